package analysis

import (
	"errors"
	"math"
	"testing"

	"iondetect/pkg/core"
)

// traceOf builds a trace from (time, mz, intensity) triples.
func traceOf(samples ...[3]float64) core.PeakTrace {
	var t core.PeakTrace
	for _, s := range samples {
		t.Samples = append(t.Samples, core.Sample{Time: s[0], MZ: s[1], Intensity: s[2]})
	}
	return t
}

func TestDetectNoPeakAboveThreshold(t *testing.T) {
	d := NewDetector()
	trace := traceOf(
		[3]float64{10, 400.1, 500},
		[3]float64{11, 400.2, 9999},
	)

	_, err := d.Detect(trace)
	if !errors.Is(err, ErrNoPeakAboveThreshold) {
		t.Fatalf("Detect() error = %v, want ErrNoPeakAboveThreshold", err)
	}
}

func TestDetectTwoSeparatedClusters(t *testing.T) {
	d := NewDetector()

	// Two tight m/z clusters around 400.10 and 400.90, each with one
	// dominant intensity point.
	trace := traceOf(
		[3]float64{10, 400.100, 20000},
		[3]float64{11, 400.101, 80000}, // dominant, low cluster
		[3]float64{12, 400.102, 15000},
		[3]float64{20, 400.900, 30000},
		[3]float64{21, 400.901, 95000}, // dominant, high cluster
		[3]float64{22, 400.902, 12000},
	)

	peaks, err := d.Detect(trace)
	if err != nil {
		t.Fatalf("Detect() unexpected error: %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("Detect() returned %d peaks, want 2", len(peaks))
	}
	if peaks[0].MzCluster != 0 || peaks[1].MzCluster != 1 {
		t.Errorf("peaks not ordered by m/z side: clusters %d, %d", peaks[0].MzCluster, peaks[1].MzCluster)
	}
	if peaks[0].MZ >= peaks[1].MZ {
		t.Errorf("low-side peak m/z %.3f not below high-side %.3f", peaks[0].MZ, peaks[1].MZ)
	}
	if math.Abs(peaks[0].Intensity-80000) > 1e-9 {
		t.Errorf("low cluster peak intensity = %.0f, want 80000", peaks[0].Intensity)
	}
	if math.Abs(peaks[1].Intensity-95000) > 1e-9 {
		t.Errorf("high cluster peak intensity = %.0f, want 95000", peaks[1].Intensity)
	}
}

func TestDetectSingleTightCluster(t *testing.T) {
	d := NewDetector()

	// Everything within one narrow band; separation ratio stays low.
	trace := traceOf(
		[3]float64{10, 400.5000, 20000},
		[3]float64{11, 400.5002, 64000},
		[3]float64{12, 400.5004, 31000},
		[3]float64{13, 400.5001, 27000},
		[3]float64{14, 400.5003, 44000},
	)

	peaks, err := d.Detect(trace)
	if err != nil {
		t.Fatalf("Detect() unexpected error: %v", err)
	}
	if len(peaks) != 1 {
		t.Fatalf("Detect() returned %d peaks, want 1", len(peaks))
	}
	if math.Abs(peaks[0].Intensity-64000) > 1e-9 {
		t.Errorf("peak intensity = %.0f, want global max 64000", peaks[0].Intensity)
	}
	if math.Abs(peaks[0].Time-11) > 1e-9 {
		t.Errorf("peak time = %.1f, want 11", peaks[0].Time)
	}
}

func TestDetectNeverMoreThanTwoPeaks(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name  string
		trace core.PeakTrace
	}{
		{
			name: "three spread groups",
			trace: traceOf(
				[3]float64{10, 400.1, 50000},
				[3]float64{11, 400.5, 60000},
				[3]float64{12, 400.9, 70000},
				[3]float64{13, 400.2, 55000},
				[3]float64{14, 400.8, 65000},
			),
		},
		{
			name: "single survivor",
			trace: traceOf(
				[3]float64{10, 400.1, 50000},
				[3]float64{11, 400.2, 500},
			),
		},
		{
			name: "identical m/z values",
			trace: traceOf(
				[3]float64{10, 400.1, 50000},
				[3]float64{11, 400.1, 60000},
				[3]float64{12, 400.1, 70000},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peaks, err := d.Detect(tt.trace)
			if err != nil {
				t.Fatalf("Detect() unexpected error: %v", err)
			}
			if len(peaks) > 2 {
				t.Fatalf("Detect() returned %d peaks, want at most 2", len(peaks))
			}
			for _, p := range peaks {
				if p.Intensity <= d.IntensityThreshold {
					t.Errorf("returned peak intensity %.0f not above threshold %.0f", p.Intensity, d.IntensityThreshold)
				}
			}
		})
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := NewDetector()
	trace := traceOf(
		[3]float64{10, 400.10, 20000},
		[3]float64{11, 400.11, 80000},
		[3]float64{20, 400.90, 30000},
		[3]float64{21, 400.91, 95000},
	)

	first, err := d.Detect(trace)
	if err != nil {
		t.Fatalf("Detect() unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := d.Detect(trace)
		if err != nil {
			t.Fatalf("Detect() unexpected error on rerun: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("rerun %d returned %d peaks, first run %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Errorf("rerun %d peak %d = %+v, first run %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestBestPeak(t *testing.T) {
	d := NewDetector()
	trace := traceOf(
		[3]float64{10, 400.1, 500},
		[3]float64{11, 400.2, 50000},
		[3]float64{12, 400.3, 200},
	)

	peak, err := d.BestPeak(trace)
	if err != nil {
		t.Fatalf("BestPeak() unexpected error: %v", err)
	}
	if math.Abs(peak.Intensity-50000) > 1e-9 || math.Abs(peak.Time-11) > 1e-9 {
		t.Errorf("BestPeak() = %+v, want intensity 50000 at time 11", peak)
	}

	_, err = d.BestPeak(core.PeakTrace{})
	if err == nil {
		t.Error("BestPeak() on empty trace should fail")
	}
}
