package core

import (
	"math"
	"testing"
)

func TestEnumerateIonMassesDefaults(t *testing.T) {
	// Glucose, 180.0634 neutral.
	mass, err := ParseFormula("C6H12O6")
	if err != nil {
		t.Fatal(err)
	}

	masses, err := EnumerateIonMasses(mass, IonModePositive, nil)
	if err != nil {
		t.Fatalf("EnumerateIonMasses() unexpected error: %v", err)
	}
	if len(masses) != 1 {
		t.Fatalf("default include set produced %d ions, want 1 (M+H)", len(masses))
	}
	mh, ok := masses["M+H"]
	if !ok {
		t.Fatal("default include set must contain M+H")
	}
	if math.Abs(mh-181.0707) > 0.001 {
		t.Errorf("M+H for glucose = %.4f, want 181.0707", mh)
	}
}

func TestEnumerateIonMassesIncludeSet(t *testing.T) {
	masses, err := EnumerateIonMasses(180.0634, IonModePositive, map[string]bool{
		"M+H":     true,
		"M+Na":    true,
		"unknown": true,
	})
	if err != nil {
		t.Fatalf("EnumerateIonMasses() unexpected error: %v", err)
	}
	if len(masses) != 2 {
		t.Fatalf("got %d ions, want 2 (unknown names ignored)", len(masses))
	}
	if math.Abs(masses["M+Na"]-203.0526) > 0.001 {
		t.Errorf("M+Na = %.4f, want 203.0526", masses["M+Na"])
	}
}

func TestEnumerateIonMassesNegativeMode(t *testing.T) {
	masses, err := EnumerateIonMasses(180.0634, IonModeNegative, nil)
	if err != nil {
		t.Fatalf("EnumerateIonMasses() unexpected error: %v", err)
	}
	mh, ok := masses["M-H"]
	if !ok {
		t.Fatal("negative default include set must contain M-H")
	}
	if math.Abs(mh-179.0561) > 0.001 {
		t.Errorf("M-H = %.4f, want 179.0561", mh)
	}
}

func TestEnumerateIonMassesErrors(t *testing.T) {
	if _, err := EnumerateIonMasses(0, IonModePositive, nil); err == nil {
		t.Error("zero neutral mass should fail")
	}
	if _, err := EnumerateIonMasses(180, IonMode("weird"), nil); err == nil {
		t.Error("unknown ion mode should fail")
	}
}
