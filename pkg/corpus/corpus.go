// Package corpus loads pathway-prediction outputs: the flat chemical
// list searched by the LCMS pipeline and the JSON prediction corpuses
// consumed by the network builder.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"iondetect/pkg/core"
)

// SearchMass is one distinct mass/charge to look for, with a stable
// identifier for progress reporting and plot naming.
type SearchMass struct {
	ID         string
	MassCharge float64
}

// MassTable maps each searched mass to every (chemical, ion) pair that
// produces it. Distinct chemicals colliding on one mass all stay
// attached to that mass.
type MassTable struct {
	Masses     []SearchMass
	Candidates map[float64][]core.IonCandidate

	// Skipped counts chemicals whose mass could not be computed.
	Skipped int
}

// BuildMassTable enumerates ion masses for every chemical in the list
// and indexes the results by mass/charge. Chemicals that fail mass
// calculation are skipped and counted, not fatal. IDs are assigned in
// ascending mass order so repeated runs name masses identically.
func BuildMassTable(chemicals []string, mode core.IonMode, include map[string]bool) (*MassTable, error) {
	table := &MassTable{Candidates: make(map[float64][]core.IonCandidate)}

	seen := make(map[float64]map[core.IonCandidate]bool)
	for _, chemical := range chemicals {
		mass, err := core.ParseFormula(chemical)
		if err != nil {
			table.Skipped++
			continue
		}

		ionMasses, err := core.EnumerateIonMasses(mass, mode, include)
		if err != nil {
			table.Skipped++
			continue
		}

		for ion, raw := range ionMasses {
			// Round so the same nominal ion mass from different chemicals
			// collides onto a single search entry.
			mz := core.RoundFloat(raw, 4)
			candidate := core.IonCandidate{Chemical: chemical, Ion: ion}
			if seen[mz] == nil {
				seen[mz] = make(map[core.IonCandidate]bool)
			}
			if seen[mz][candidate] {
				continue
			}
			seen[mz][candidate] = true
			table.Candidates[mz] = append(table.Candidates[mz], candidate)
		}
	}

	if len(table.Candidates) == 0 {
		return nil, fmt.Errorf("no usable chemicals in corpus (%d skipped)", table.Skipped)
	}

	masses := make([]float64, 0, len(table.Candidates))
	for mz := range table.Candidates {
		masses = append(masses, mz)
	}
	sort.Float64s(masses)
	for i, mz := range masses {
		table.Masses = append(table.Masses, SearchMass{
			ID:         fmt.Sprintf("CHEM_%d", i),
			MassCharge: mz,
		})
	}

	return table, nil
}

// ReadChemicalList reads one chemical identifier per line, skipping
// blank lines.
func ReadChemicalList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction corpus: %w", err)
	}
	defer f.Close()

	return readChemicalLines(f)
}

func readChemicalLines(r io.Reader) ([]string, error) {
	var chemicals []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		chemicals = append(chemicals, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prediction corpus: %w", err)
	}
	if len(chemicals) == 0 {
		return nil, fmt.Errorf("prediction corpus is empty")
	}
	return chemicals, nil
}

// Prediction is one predicted reaction from the pathway-expansion step.
type Prediction struct {
	ID         int      `json:"id"`
	Substrates []string `json:"substrates"`
	Products   []string `json:"products"`
	Projector  string   `json:"projectorName"`
}

// PredictionCorpus is a serialized set of predictions.
type PredictionCorpus struct {
	Predictions []Prediction `json:"predictions"`
}

// ReadPredictionCorpus loads a prediction corpus from a JSON file.
func ReadPredictionCorpus(path string) (*PredictionCorpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction corpus: %w", err)
	}
	var c PredictionCorpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prediction corpus %s: %w", path, err)
	}
	return &c, nil
}

// ProductSet returns the distinct products across all predictions, in
// first-seen order. These are the chemicals the LCMS pipeline searches
// for.
func (c *PredictionCorpus) ProductSet() []string {
	var products []string
	seen := make(map[string]bool)
	for _, p := range c.Predictions {
		for _, product := range p.Products {
			if !seen[product] {
				seen[product] = true
				products = append(products, product)
			}
		}
	}
	return products
}
