package analysis

import (
	"errors"
	"math"
	"testing"

	"iondetect/pkg/core"
)

func TestComputeSNR(t *testing.T) {
	positive := traceOf(
		[3]float64{100, 400.1, 50000},
		[3]float64{101, 400.1, 12000},
	)
	negatives := []core.PeakTrace{
		traceOf([3]float64{100, 400.1, 300}, [3]float64{101, 400.1, 500}),
		traceOf([3]float64{100, 400.1, 450}),
	}

	result, err := ComputeSNR(400.1, positive, negatives)
	if err != nil {
		t.Fatalf("ComputeSNR() unexpected error: %v", err)
	}
	if math.Abs(result.SNR-100) > 1e-9 {
		t.Errorf("SNR = %.3f, want 100 (50000/500)", result.SNR)
	}
	if math.Abs(result.PeakHeight-50000) > 1e-9 {
		t.Errorf("peak height = %.0f, want 50000", result.PeakHeight)
	}
	if math.Abs(result.PeakTime-100) > 1e-9 {
		t.Errorf("peak time = %.0f, want 100", result.PeakTime)
	}
	if math.Abs(result.MassCharge-400.1) > 1e-9 {
		t.Errorf("mass charge = %.3f, want 400.1", result.MassCharge)
	}
}

func TestComputeSNRNoNegativeControls(t *testing.T) {
	positive := traceOf([3]float64{100, 400.1, 50000})

	_, err := ComputeSNR(400.1, positive, nil)
	if !errors.Is(err, ErrNoNegativeControls) {
		t.Fatalf("ComputeSNR() error = %v, want ErrNoNegativeControls", err)
	}
}

func TestComputeSNRDegenerateBaseline(t *testing.T) {
	positive := traceOf([3]float64{100, 400.1, 50000})

	tests := []struct {
		name      string
		negatives []core.PeakTrace
	}{
		{
			name:      "all-zero negatives",
			negatives: []core.PeakTrace{traceOf([3]float64{100, 400.1, 0})},
		},
		{
			name:      "empty negative traces",
			negatives: []core.PeakTrace{{}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSNR(400.1, positive, tt.negatives)
			if !errors.Is(err, ErrDegenerateBaseline) {
				t.Fatalf("ComputeSNR() error = %v, want ErrDegenerateBaseline", err)
			}
		})
	}
}
