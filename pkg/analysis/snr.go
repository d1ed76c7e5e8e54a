package analysis

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"iondetect/pkg/core"
)

// baselineEpsilon guards the SNR division. A pooled negative baseline at
// or below this is indistinguishable from no signal at all.
const baselineEpsilon = 1e-9

var (
	// ErrNoNegativeControls is reported when SNR is requested without any
	// negative-control traces; SNR is undefined in that case, never an
	// implicit infinity.
	ErrNoNegativeControls = errors.New("no negative controls supplied")
	// ErrDegenerateBaseline is reported when the pooled negative
	// intensities are effectively zero.
	ErrDegenerateBaseline = errors.New("degenerate noise baseline")
)

// ComputeSNR scores a positive-sample trace against the pooled
// negative-control traces for the same target mass. The best peak is the
// highest-intensity sample of the positive trace (batch single-peak
// strategy) and the noise baseline is the maximum intensity observed
// across all negative samples.
func ComputeSNR(target float64, positive core.PeakTrace, negatives []core.PeakTrace) (core.SNRResult, error) {
	if positive.Empty() {
		return core.SNRResult{}, ErrNoPeakAboveThreshold
	}
	if len(negatives) == 0 {
		return core.SNRResult{}, ErrNoNegativeControls
	}

	var pooled []float64
	for _, neg := range negatives {
		for _, s := range neg.Samples {
			pooled = append(pooled, s.Intensity)
		}
	}
	if len(pooled) == 0 {
		return core.SNRResult{}, ErrDegenerateBaseline
	}

	baseline := floats.Max(pooled)
	if baseline <= baselineEpsilon {
		return core.SNRResult{}, ErrDegenerateBaseline
	}

	best := positive.MaxIntensitySample()
	return core.SNRResult{
		MassCharge: target,
		PeakTime:   best.Time,
		PeakHeight: best.Intensity,
		SNR:        best.Intensity / baseline,
	}, nil
}
