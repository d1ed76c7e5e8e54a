package analysis

import "iondetect/pkg/core"

// Fixed validity defaults; the intensity minimum is always supplied by
// the caller.
const (
	DefaultMinTimeThreshold = 15.0
	DefaultMinSNRThreshold  = 1000.0
)

// Thresholds holds the accept/reject cutoffs for a detected peak.
type Thresholds struct {
	MinIntensity float64
	MinTime      float64
	MinSNR       float64
}

// NewThresholds pairs a caller-supplied intensity minimum with the fixed
// time and SNR defaults.
func NewThresholds(minIntensity float64) Thresholds {
	return Thresholds{
		MinIntensity: minIntensity,
		MinTime:      DefaultMinTimeThreshold,
		MinSNR:       DefaultMinSNRThreshold,
	}
}

// Classify decides whether an SNR result constitutes a valid hit. All
// comparisons are strict; a value exactly at its threshold is invalid.
func (t Thresholds) Classify(r core.SNRResult) bool {
	return r.PeakHeight > t.MinIntensity &&
		r.PeakTime > t.MinTime &&
		r.SNR > t.MinSNR
}
