package wells

import (
	"strings"
	"testing"
)

func TestParseLayout(t *testing.T) {
	table := strings.Join([]string{
		"WELL_TYPE\tWELL_ROW\tWELL_COLUMN\tPLATE_BARCODE",
		"POS\t0\t1\t12389",
		"NEG\t0\t2\t12389",
		"BLANK\t0\t3\t12390",
	}, "\n")

	layout, err := parseLayout(strings.NewReader(table))
	if err != nil {
		t.Fatalf("parseLayout() unexpected error: %v", err)
	}
	if len(layout.Positive) != 1 {
		t.Fatalf("got %d positive wells, want 1", len(layout.Positive))
	}
	// Non-POS well types are all negative controls.
	if len(layout.Negative) != 2 {
		t.Fatalf("got %d negative wells, want 2", len(layout.Negative))
	}

	pos := layout.Positive[0]
	if pos.PlateBarcode != "12389" || pos.Row != 0 || pos.Column != 1 {
		t.Errorf("positive well = %+v", pos)
	}
	if pos.ID() != "12389_0_1" {
		t.Errorf("well ID = %q, want 12389_0_1", pos.ID())
	}
	if got := pos.ScanFilePath("/data"); got != "/data/12389_0_1.mzML" {
		t.Errorf("scan file path = %q", got)
	}
}

func TestParseLayoutHeaderValidation(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{
			name:  "missing header",
			table: "WELL_TYPE\tWELL_ROW\tWELL_COLUMN\nPOS\t0\t1",
		},
		{
			name:  "extra header",
			table: "WELL_TYPE\tWELL_ROW\tWELL_COLUMN\tPLATE_BARCODE\tEXTRA\nPOS\t0\t1\t12389\tx",
		},
		{
			name:  "renamed header",
			table: "TYPE\tWELL_ROW\tWELL_COLUMN\tPLATE_BARCODE\nPOS\t0\t1\t12389",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseLayout(strings.NewReader(tt.table)); err == nil {
				t.Fatal("bad header set must be rejected")
			}
		})
	}
}

func TestParseLayoutBadCoordinates(t *testing.T) {
	table := "WELL_TYPE\tWELL_ROW\tWELL_COLUMN\tPLATE_BARCODE\nPOS\tx\t1\t12389"
	if _, err := parseLayout(strings.NewReader(table)); err == nil {
		t.Fatal("non-numeric well row must be rejected")
	}
}

func TestParseLayoutNoPositives(t *testing.T) {
	table := "WELL_TYPE\tWELL_ROW\tWELL_COLUMN\tPLATE_BARCODE\nNEG\t0\t1\t12389"
	if _, err := parseLayout(strings.NewReader(table)); err == nil {
		t.Fatal("table without positive wells must be rejected")
	}
}
