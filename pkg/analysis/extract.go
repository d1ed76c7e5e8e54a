package analysis

import (
	"errors"

	"iondetect/pkg/core"
)

// Sentinel conditions for window extraction. The two empty outcomes are
// distinct so batch callers can report which stage produced nothing.
var (
	ErrNoScansInRange  = errors.New("no MS1 scans in retention-time range")
	ErrNoPeaksInWindow = errors.New("no peaks in m/z window")
)

// ExtractTrace selects the MS1 scans whose retention time lies strictly
// inside the time window, flattens their (m/z, intensity) points with
// each point replicating its scan's retention time, and keeps the points
// strictly inside the m/z window. Pure over its inputs; the scan file
// itself comes from the read-through cache.
func ExtractTrace(sf *core.ScanFile, mz core.MzWindow, rt core.TimeWindow) (core.PeakTrace, error) {
	var selected []core.Scan
	for _, scan := range sf.Scans {
		if scan.Header.MSLevel != 1 {
			continue
		}
		if !rt.Contains(scan.Header.RetentionTime) {
			continue
		}
		selected = append(selected, scan)
	}
	if len(selected) == 0 {
		return core.PeakTrace{}, ErrNoScansInRange
	}

	var trace core.PeakTrace
	for _, scan := range selected {
		for _, p := range scan.Points {
			if !mz.Contains(p.MZ) {
				continue
			}
			trace.Samples = append(trace.Samples, core.Sample{
				Time:      scan.Header.RetentionTime,
				MZ:        p.MZ,
				Intensity: p.Intensity,
			})
		}
	}
	if trace.Empty() {
		return core.PeakTrace{}, ErrNoPeaksInWindow
	}

	return trace, nil
}
