package analysis

import (
	"errors"

	"iondetect/pkg/core"
)

// Default detector parameters, matching the thresholds used for
// interactive chromatogram exploration.
const (
	DefaultIntensityThreshold  = 10000.0
	DefaultSeparationThreshold = 20.0
)

// ErrNoPeakAboveThreshold is reported when no sample in the trace clears
// the intensity threshold.
var ErrNoPeakAboveThreshold = errors.New("no peak above intensity threshold")

// Detector finds representative peaks in an extracted trace. Detect is
// the interactive clustering strategy; BestPeak is the batch single-peak
// strategy used by the SNR scorer. Both operate on the same trace
// capability, selected by the caller.
type Detector struct {
	IntensityThreshold  float64
	SeparationThreshold float64
}

// NewDetector returns a detector with the default thresholds.
func NewDetector() *Detector {
	return &Detector{
		IntensityThreshold:  DefaultIntensityThreshold,
		SeparationThreshold: DefaultSeparationThreshold,
	}
}

// Detect identifies one or two peaks in the trace. Samples below the
// intensity threshold are discarded first; the survivors' m/z values are
// partitioned with 2-means. When the cluster separation ratio exceeds the
// separation threshold the trace is treated as two resolvable
// chromatographic peaks (near-isobaric species inside one narrow window):
// a 2-class break splits the m/z axis and the highest-intensity point on
// each side is returned, low side first. Otherwise the single global
// maximum is the peak.
func (d *Detector) Detect(trace core.PeakTrace) ([]core.DetectedPeak, error) {
	var filtered []core.Sample
	for _, s := range trace.Samples {
		if s.Intensity > d.IntensityThreshold {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoPeakAboveThreshold
	}

	single := func() []core.DetectedPeak {
		best := maxIntensity(filtered)
		return []core.DetectedPeak{{Time: best.Time, MZ: best.MZ, Intensity: best.Intensity, MzCluster: 0}}
	}

	if len(filtered) < 2 {
		return single(), nil
	}

	mzs := make([]float64, len(filtered))
	for i, s := range filtered {
		mzs[i] = s.MZ
	}

	assignments, centers := kmeans2(mzs)
	ratio := separationRatio(mzs, assignments, centers)
	if ratio <= d.SeparationThreshold {
		return single(), nil
	}

	brk := classBreak(mzs, assignments)
	var low, high []core.Sample
	for _, s := range filtered {
		if s.MZ < brk {
			low = append(low, s)
		} else {
			high = append(high, s)
		}
	}
	if len(low) == 0 || len(high) == 0 {
		return single(), nil
	}

	lowBest := maxIntensity(low)
	highBest := maxIntensity(high)
	return []core.DetectedPeak{
		{Time: lowBest.Time, MZ: lowBest.MZ, Intensity: lowBest.Intensity, MzCluster: 0},
		{Time: highBest.Time, MZ: highBest.MZ, Intensity: highBest.Intensity, MzCluster: 1},
	}, nil
}

// BestPeak returns the single highest-intensity sample of the trace, the
// single-peak assumption used for automated batch scoring of one target
// mass.
func (d *Detector) BestPeak(trace core.PeakTrace) (core.DetectedPeak, error) {
	if trace.Empty() {
		return core.DetectedPeak{}, ErrNoPeakAboveThreshold
	}
	best := trace.MaxIntensitySample()
	return core.DetectedPeak{Time: best.Time, MZ: best.MZ, Intensity: best.Intensity, MzCluster: 0}, nil
}

func maxIntensity(samples []core.Sample) core.Sample {
	best := samples[0]
	for _, s := range samples[1:] {
		if s.Intensity > best.Intensity {
			best = s
		}
	}
	return best
}
