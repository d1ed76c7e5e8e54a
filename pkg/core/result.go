package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// HitOrMiss is one chemical/ion candidate scored against a searched mass.
type HitOrMiss struct {
	Inchi     string  `json:"inchi"`
	Ion       string  `json:"ion"`
	SNR       float64 `json:"snr"`
	Time      float64 `json:"time"`
	Intensity float64 `json:"intensity"`
	PlotPath  string  `json:"plotPath"`
}

// ResultForMZ aggregates the hit records for one searched mass in one
// well, together with the validity decision for that mass.
type ResultForMZ struct {
	MZ        float64     `json:"mz"`
	IsValid   bool        `json:"isValid"`
	Molecules []HitOrMiss `json:"molecules"`
}

// AddMolecule appends a hit record to the result.
func (r *ResultForMZ) AddMolecule(m HitOrMiss) {
	r.Molecules = append(r.Molecules, m)
}

// AnalysisModel is the serialized form of one well's analysis: one
// ResultForMZ per searched mass.
type AnalysisModel struct {
	Results []ResultForMZ `json:"results"`
}

// WriteJSONFile serializes the model to path.
func (m *AnalysisModel) WriteJSONFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write analysis model: %w", err)
	}
	return nil
}

// ReadAnalysisModel loads a serialized per-well analysis from path.
func ReadAnalysisModel(path string) (*AnalysisModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis model: %w", err)
	}
	var m AnalysisModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse analysis model %s: %w", path, err)
	}
	return &m, nil
}

// Consensus reduces one replicate result set per positive well into a
// single set: a mass is valid iff it is valid in every replicate, and its
// molecule list is the deduplicated union across replicates. Aggregation
// is keyed by mass value, and every replicate must report exactly the
// same mass set; a mismatch is an error rather than a positional
// out-of-bounds risk. Must only be called once all replicates are
// complete. Output is sorted by m/z for deterministic serialization.
func Consensus(replicates []AnalysisModel) (*AnalysisModel, error) {
	if len(replicates) == 0 {
		return nil, fmt.Errorf("no replicate results to aggregate")
	}

	type agg struct {
		valid     bool
		seen      int
		molecules []HitOrMiss
		dedupe    map[HitOrMiss]bool
	}

	byMass := make(map[float64]*agg)
	for _, r := range replicates[0].Results {
		byMass[r.MZ] = &agg{valid: true, dedupe: make(map[HitOrMiss]bool)}
	}

	for i, rep := range replicates {
		if len(rep.Results) != len(byMass) {
			return nil, fmt.Errorf(
				"replicate %d reports %d masses, expected %d: mismatched mass sets",
				i, len(rep.Results), len(byMass))
		}
		for _, r := range rep.Results {
			a, ok := byMass[r.MZ]
			if !ok {
				return nil, fmt.Errorf("replicate %d reports mass %f absent from replicate 0", i, r.MZ)
			}
			a.seen++
			if !r.IsValid {
				a.valid = false
			}
			for _, m := range r.Molecules {
				if !a.dedupe[m] {
					a.dedupe[m] = true
					a.molecules = append(a.molecules, m)
				}
			}
		}
	}

	masses := make([]float64, 0, len(byMass))
	for mz, a := range byMass {
		if a.seen != len(replicates) {
			return nil, fmt.Errorf("mass %f reported by %d of %d replicates", mz, a.seen, len(replicates))
		}
		masses = append(masses, mz)
	}
	sort.Float64s(masses)

	out := &AnalysisModel{Results: make([]ResultForMZ, 0, len(masses))}
	for _, mz := range masses {
		a := byMass[mz]
		out.Results = append(out.Results, ResultForMZ{
			MZ:        mz,
			IsValid:   a.valid,
			Molecules: a.molecules,
		})
	}
	return out, nil
}
