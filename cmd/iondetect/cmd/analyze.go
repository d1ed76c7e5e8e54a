package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"iondetect/pkg/analysis"
	"iondetect/pkg/core"
	"iondetect/pkg/corpus"
	"iondetect/pkg/pipeline"
	"iondetect/pkg/wells"
)

func parseIonMode(s string) (core.IonMode, error) {
	switch strings.ToLower(s) {
	case "pos":
		return core.IonModePositive, nil
	case "neg":
		return core.IonModeNegative, nil
	default:
		return "", fmt.Errorf("invalid ion mode %q, must be pos or neg", s)
	}
}

func parseIonNames(s string) map[string]bool {
	if s == "" {
		return nil
	}
	include := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		include[strings.TrimSpace(name)] = true
	}
	return include
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mode, err := parseIonMode(ionModeFlag)
	if err != nil {
		return err
	}

	layout, err := wells.ReadLayout(wellTable)
	if err != nil {
		return err
	}
	fmt.Printf("Wells: %d positive, %d negative\n", len(layout.Positive), len(layout.Negative))

	chemicals, err := corpus.ReadChemicalList(corpusFile)
	if err != nil {
		return err
	}

	table, err := corpus.BuildMassTable(chemicals, mode, parseIonNames(ionNames))
	if err != nil {
		return err
	}
	fmt.Printf("Searching %d masses from %d chemicals", len(table.Masses), len(chemicals))
	if table.Skipped > 0 {
		fmt.Printf(" (%d skipped)", table.Skipped)
	}
	fmt.Println()

	window, err := core.NewTimeWindow(rtMin, rtMax)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(pipeline.Config{
		DataDir:      dataDir,
		PlottingDir:  plottingDir,
		OutputPrefix: outputPrefix,
		Thresholds:   analysis.NewThresholds(minIntensity),
		TimeWindow:   window,
		MzHalfwidth:  mzHalfwidth,
	})
	if err != nil {
		return err
	}

	lastPercent := -1
	written, err := runner.Run(layout, table, func(fraction float64, stage string) {
		percent := int(fraction * 100)
		if percent/10 > lastPercent/10 {
			fmt.Printf("%3d%% %s\n", percent, stage)
		}
		lastPercent = percent
	})
	if err != nil {
		return err
	}

	stats := runner.Stats()
	fmt.Printf("\nAnalysis complete!\n")
	fmt.Printf("Wells processed: %d\n", stats.WellsProcessed)
	fmt.Printf("Masses scored: %d\n", stats.MassesScored)
	if stats.MassesSkipped > 0 {
		fmt.Printf("Masses skipped: %d (no scorable signal)\n", stats.MassesSkipped)
	}
	for _, path := range written {
		fmt.Printf("Output: %s\n", path)
	}

	return nil
}
