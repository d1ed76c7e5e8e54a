// Package core provides the data model and validation logic for LC-MS
// trace analysis: scan files, extraction windows, peak traces and the
// per-mass result records produced by the SNR pipeline.
package core

import (
	"fmt"
	"math"
	"sort"
)

// Bounds enforced when constructing an MzWindow. Wider windows risk
// unbounded memory and compute cost during extraction.
const (
	MinMzTarget    = 50.0
	MaxMzTarget    = 950.0
	MinMzHalfwidth = 0.00001
	MaxMzHalfwidth = 1.0
)

// ValidationError represents an error found while validating analysis inputs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// TimeWindow is a closed retention-time interval [Min, Max] in seconds.
type TimeWindow struct {
	Min float64
	Max float64
}

// NewTimeWindow validates and constructs a retention-time window.
func NewTimeWindow(min, max float64) (TimeWindow, error) {
	if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
		return TimeWindow{}, &ValidationError{Field: "TimeWindow", Message: "bounds must be finite"}
	}
	if min >= max {
		return TimeWindow{}, &ValidationError{
			Field:   "TimeWindow",
			Message: fmt.Sprintf("min %.3f must be less than max %.3f", min, max),
		}
	}
	return TimeWindow{Min: min, Max: max}, nil
}

// Contains reports whether t lies strictly inside the window.
func (w TimeWindow) Contains(t float64) bool {
	return t > w.Min && t < w.Max
}

// MzWindow is a mass-to-charge band [Target-Halfwidth, Target+Halfwidth].
type MzWindow struct {
	Target    float64
	Halfwidth float64
}

// NewMzWindow validates and constructs an m/z window around a target mass.
func NewMzWindow(target, halfwidth float64) (MzWindow, error) {
	if target < MinMzTarget || target > MaxMzTarget {
		return MzWindow{}, &ValidationError{
			Field:   "MzWindow",
			Message: fmt.Sprintf("target %.5f outside [%.1f, %.1f]", target, MinMzTarget, MaxMzTarget),
		}
	}
	if halfwidth < MinMzHalfwidth || halfwidth > MaxMzHalfwidth {
		return MzWindow{}, &ValidationError{
			Field:   "MzWindow",
			Message: fmt.Sprintf("halfwidth %.6f outside [%.5f, %.1f]", halfwidth, MinMzHalfwidth, MaxMzHalfwidth),
		}
	}
	return MzWindow{Target: target, Halfwidth: halfwidth}, nil
}

// Contains reports whether mz lies strictly inside the band.
func (w MzWindow) Contains(mz float64) bool {
	return mz > w.Target-w.Halfwidth && mz < w.Target+w.Halfwidth
}

// Sample is a single (retention time, m/z, intensity) observation inside
// one extraction window.
type Sample struct {
	Time      float64
	MZ        float64
	Intensity float64
}

// PeakTrace is the ordered sample set extracted for one m/z and time
// window from one well's scan file. Derived, never persisted.
type PeakTrace struct {
	Samples []Sample
}

// Empty reports whether the trace holds no samples.
func (t PeakTrace) Empty() bool {
	return len(t.Samples) == 0
}

// MaxIntensitySample returns the highest-intensity sample. The trace must
// be non-empty.
func (t PeakTrace) MaxIntensitySample() Sample {
	best := t.Samples[0]
	for _, s := range t.Samples[1:] {
		if s.Intensity > best.Intensity {
			best = s
		}
	}
	return best
}

// SortByTime orders samples by retention time ascending.
func (t *PeakTrace) SortByTime() {
	sort.Slice(t.Samples, func(i, j int) bool {
		return t.Samples[i].Time < t.Samples[j].Time
	})
}

// DetectedPeak is one representative peak found in a trace.
type DetectedPeak struct {
	Time      float64
	MZ        float64
	Intensity float64
	// MzCluster is 0 for a single peak, or 0/1 for the low/high m/z side
	// when two resolvable peaks were found.
	MzCluster int
}

// SNRResult holds the outcome of scoring one target mass in one well.
type SNRResult struct {
	MassCharge float64
	PeakTime   float64
	PeakHeight float64
	SNR        float64
	// PlotPath points at the trace artifact written next to the result.
	PlotPath string
}
