package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"iondetect/pkg/analysis"
	"iondetect/pkg/core"
	"iondetect/pkg/scan"
)

func runPeaks(cmd *cobra.Command, args []string) error {
	mzWindow, err := core.NewMzWindow(peaksMz, mzHalfwidth)
	if err != nil {
		return err
	}
	rtWindow, err := core.NewTimeWindow(rtMin, rtMax)
	if err != nil {
		return err
	}

	cache := scan.NewCache()
	sf, err := cache.Get(peaksInput)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s: %d scans, %d points\n", sf.Filename, len(sf.Scans), sf.PointCount())

	trace, err := analysis.ExtractTrace(sf, mzWindow, rtWindow)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d samples for m/z %.4f +/- %.4f\n", len(trace.Samples), peaksMz, mzHalfwidth)

	detector := &analysis.Detector{
		IntensityThreshold:  peaksThreshold,
		SeparationThreshold: peaksSepRatio,
	}
	peaks, err := detector.Detect(trace)
	if err != nil {
		return err
	}

	for _, p := range peaks {
		fmt.Printf("Peak: m/z %.4f, time %.2fs, intensity %.1f (cluster %d)\n",
			p.MZ, p.Time, p.Intensity, p.MzCluster)
	}
	return nil
}
