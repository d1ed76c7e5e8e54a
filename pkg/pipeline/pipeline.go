// Package pipeline orchestrates the batch SNR analysis: per positive
// well, every searched mass is extracted, scored against the pooled
// negative controls, classified and serialized, followed by a
// cross-replicate consensus when the experiment has more than one
// positive well.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"iondetect/pkg/analysis"
	"iondetect/pkg/core"
	"iondetect/pkg/corpus"
	"iondetect/pkg/scan"
	"iondetect/pkg/wells"
)

// Config carries the experiment parameters shared by every well.
type Config struct {
	DataDir      string
	PlottingDir  string
	OutputPrefix string
	Thresholds   analysis.Thresholds
	TimeWindow   core.TimeWindow
	MzHalfwidth  float64
}

// Progress receives completion fraction in [0, 1] and a short stage
// description. Replaces exit-on-error progress printing: the runner
// never terminates the process, callers decide.
type Progress func(fraction float64, stage string)

// Stats counts per-item outcomes of one run. Skipped items are masses
// that produced no scorable signal (validation failure, nothing in
// window, degenerate baseline); they are not errors for the run.
type Stats struct {
	WellsProcessed int
	MassesScored   int
	MassesSkipped  int
}

// Runner executes the analysis for one experiment. The scan cache is
// owned here and handed to each well's processing, never global.
type Runner struct {
	cfg   Config
	cache *scan.Cache
	stats Stats
}

// NewRunner validates the configuration and constructs a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	info, err := os.Stat(cfg.DataDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.DataDir)
	}
	if cfg.PlottingDir != "" {
		if err := os.MkdirAll(cfg.PlottingDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create plotting directory: %w", err)
		}
	}
	if cfg.MzHalfwidth == 0 {
		cfg.MzHalfwidth = 0.01
	}

	return &Runner{
		cfg:   cfg,
		cache: scan.NewCache(),
	}, nil
}

// Stats returns the counters accumulated so far.
func (r *Runner) Stats() Stats {
	return r.stats
}

// Run processes every positive well against the shared negative
// controls, writes one JSON result file per well, and, when the
// experiment has more than one positive well, a consensus file reduced
// only after all replicates completed. Returns the written file paths.
func (r *Runner) Run(layout *wells.Layout, table *corpus.MassTable, progress Progress) ([]string, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	if len(layout.Negative) == 0 {
		return nil, analysis.ErrNoNegativeControls
	}

	// Materialize every negative control once; all wells and masses
	// reuse the same immutable ScanFile data.
	negatives := make([]*core.ScanFile, 0, len(layout.Negative))
	for _, w := range layout.Negative {
		sf, err := r.cache.Get(w.ScanFilePath(r.cfg.DataDir))
		if err != nil {
			return nil, fmt.Errorf("negative well %s: %w", w.ID(), err)
		}
		negatives = append(negatives, sf)
	}

	var written []string
	var replicates []core.AnalysisModel

	totalSteps := len(layout.Positive) * len(table.Masses)
	step := 0

	for _, positive := range layout.Positive {
		sf, err := r.cache.Get(positive.ScanFilePath(r.cfg.DataDir))
		if err != nil {
			return nil, fmt.Errorf("positive well %s: %w", positive.ID(), err)
		}

		model := core.AnalysisModel{}
		for _, mass := range table.Masses {
			step++
			progress(float64(step)/float64(totalSteps), fmt.Sprintf("well %s mass %s", positive.ID(), mass.ID))

			result, err := r.scoreMass(positive, sf, negatives, mass)
			if err != nil {
				if isSkippable(err) {
					log.Printf("skipping mass %s in well %s: %v", mass.ID, positive.ID(), err)
					r.stats.MassesSkipped++
					continue
				}
				return nil, fmt.Errorf("well %s mass %s: %w", positive.ID(), mass.ID, err)
			}

			r.stats.MassesScored++
			resultForMZ := core.ResultForMZ{
				MZ:      mass.MassCharge,
				IsValid: r.cfg.Thresholds.Classify(result),
			}
			for _, candidate := range table.Candidates[mass.MassCharge] {
				resultForMZ.AddMolecule(core.HitOrMiss{
					Inchi:     candidate.Chemical,
					Ion:       candidate.Ion,
					SNR:       result.SNR,
					Time:      result.PeakTime,
					Intensity: result.PeakHeight,
					PlotPath:  result.PlotPath,
				})
			}
			model.Results = append(model.Results, resultForMZ)
		}

		outPath := fmt.Sprintf("%s_%s.json", r.cfg.OutputPrefix, positive.ID())
		if err := model.WriteJSONFile(outPath); err != nil {
			return nil, err
		}
		written = append(written, outPath)
		replicates = append(replicates, model)
		r.stats.WellsProcessed++
	}

	if len(layout.Positive) > 1 {
		consensus, err := core.Consensus(replicates)
		if err != nil {
			return nil, fmt.Errorf("consensus aggregation: %w", err)
		}
		outPath := r.cfg.OutputPrefix + "_post_process.json"
		if err := consensus.WriteJSONFile(outPath); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}

	progress(1, "done")
	return written, nil
}

// scoreMass runs the extract -> SNR chain for one (well, mass) pair.
func (r *Runner) scoreMass(well wells.Well, sf *core.ScanFile, negatives []*core.ScanFile, mass corpus.SearchMass) (core.SNRResult, error) {
	window, err := core.NewMzWindow(mass.MassCharge, r.cfg.MzHalfwidth)
	if err != nil {
		return core.SNRResult{}, err
	}

	positiveTrace, err := analysis.ExtractTrace(sf, window, r.cfg.TimeWindow)
	if err != nil {
		return core.SNRResult{}, err
	}

	// A negative with nothing in this window still participates with an
	// empty trace; the pooled baseline handles it.
	negativeTraces := make([]core.PeakTrace, 0, len(negatives))
	for _, neg := range negatives {
		trace, err := analysis.ExtractTrace(neg, window, r.cfg.TimeWindow)
		if err != nil {
			if errors.Is(err, analysis.ErrNoScansInRange) || errors.Is(err, analysis.ErrNoPeaksInWindow) {
				negativeTraces = append(negativeTraces, core.PeakTrace{})
				continue
			}
			return core.SNRResult{}, err
		}
		negativeTraces = append(negativeTraces, trace)
	}

	result, err := analysis.ComputeSNR(mass.MassCharge, positiveTrace, negativeTraces)
	if err != nil {
		return core.SNRResult{}, err
	}

	if r.cfg.PlottingDir != "" {
		plotPath, err := r.writeTraceArtifact(well, mass, positiveTrace, negativeTraces)
		if err != nil {
			return core.SNRResult{}, err
		}
		result.PlotPath = plotPath
	}

	return result, nil
}

// isSkippable reports whether a per-mass failure should be counted and
// skipped rather than aborting the batch.
func isSkippable(err error) bool {
	if errors.Is(err, analysis.ErrNoScansInRange) ||
		errors.Is(err, analysis.ErrNoPeaksInWindow) ||
		errors.Is(err, analysis.ErrNoPeakAboveThreshold) ||
		errors.Is(err, analysis.ErrDegenerateBaseline) {
		return true
	}
	var ve *core.ValidationError
	return errors.As(err, &ve)
}

// writeTraceArtifact dumps the positive and negative traces for one
// mass as TSV so an external plotter can render the diagnostic.
func (r *Runner) writeTraceArtifact(well wells.Well, mass corpus.SearchMass, positive core.PeakTrace, negatives []core.PeakTrace) (string, error) {
	var b strings.Builder
	b.WriteString("trace\ttime\tintensity\n")

	writeTrace := func(label string, t core.PeakTrace) {
		for _, s := range t.Samples {
			fmt.Fprintf(&b, "%s\t%f\t%f\n", label, s.Time, s.Intensity)
		}
	}
	writeTrace("pos", positive)
	for i, neg := range negatives {
		writeTrace(fmt.Sprintf("neg_%d", i), neg)
	}

	path := filepath.Join(r.cfg.PlottingDir, fmt.Sprintf("%s_%s.tsv", well.ID(), mass.ID))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write trace artifact: %w", err)
	}
	return path, nil
}
