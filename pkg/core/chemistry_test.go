package core

import (
	"math"
	"testing"
)

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name      string
		formula   string
		wantMass  float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "glucose",
			formula:   "C6H12O6",
			wantMass:  180.0634,
			tolerance: 0.001,
		},
		{
			name:      "water",
			formula:   "H2O",
			wantMass:  18.0106,
			tolerance: 0.001,
		},
		{
			name:      "methionine with implicit counts",
			formula:   "C5H11NO2S",
			wantMass:  149.0510,
			tolerance: 0.001,
		},
		{
			name:      "chlorinated compound",
			formula:   "C2H3Cl",
			wantMass:  61.9923,
			tolerance: 0.001,
		},
		{
			name:    "empty formula",
			formula: "",
			wantErr: true,
		},
		{
			name:    "unknown element",
			formula: "C6Xx2",
			wantErr: true,
		},
		{
			name:    "leading lowercase",
			formula: "c6H12O6",
			wantErr: true,
		},
		{
			name:    "zero count",
			formula: "C0H2",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormula(tt.formula)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormula(%q) = %.4f, want error", tt.formula, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormula(%q) unexpected error: %v", tt.formula, err)
			}
			if math.Abs(got-tt.wantMass) > tt.tolerance {
				t.Errorf("ParseFormula(%q) = %.4f, want %.4f (within %.4f)", tt.formula, got, tt.wantMass, tt.tolerance)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	if got := RoundFloat(1.23456, 2); got != 1.23 {
		t.Errorf("RoundFloat(1.23456, 2) = %f, want 1.23", got)
	}
	if got := RoundFloat(180.06339, 4); got != 180.0634 {
		t.Errorf("RoundFloat(180.06339, 4) = %f, want 180.0634", got)
	}
}
