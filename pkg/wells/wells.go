// Package wells reads the experiment layout: which plate wells are
// positive samples and which are negative controls, and where each
// well's raw scan file lives.
package wells

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Required control-well table headers.
const (
	HeaderWellType     = "WELL_TYPE"
	HeaderWellRow      = "WELL_ROW"
	HeaderWellColumn   = "WELL_COLUMN"
	HeaderPlateBarcode = "PLATE_BARCODE"
)

// WellTypePositive marks a positive well; any other WELL_TYPE value is
// treated as a negative control.
const WellTypePositive = "POS"

// Well is one plate well referenced by the control table.
type Well struct {
	PlateBarcode string
	Row          int
	Column       int
	Positive     bool
}

// ID is a stable identifier for naming per-well outputs.
func (w Well) ID() string {
	return fmt.Sprintf("%s_%d_%d", w.PlateBarcode, w.Row, w.Column)
}

// ScanFilePath resolves the well's raw scan file under dataDir using the
// <barcode>_<row>_<col>.mzML convention.
func (w Well) ScanFilePath(dataDir string) string {
	return filepath.Join(dataDir, w.ID()+".mzML")
}

// Layout is the parsed control-well table split by well type.
type Layout struct {
	Positive []Well
	Negative []Well
}

// ReadLayout parses a tab-separated control-well table. The header set
// must be exactly {WELL_TYPE, WELL_ROW, WELL_COLUMN, PLATE_BARCODE};
// anything else aborts the run.
func ReadLayout(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open control-well table: %w", err)
	}
	defer f.Close()

	return parseLayout(f)
}

func parseLayout(r io.Reader) (*Layout, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read control-well header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	required := []string{HeaderWellType, HeaderWellRow, HeaderWellColumn, HeaderPlateBarcode}
	if len(index) != len(required) {
		return nil, fmt.Errorf("control-well table has headers %v, want exactly %v", header, required)
	}
	for _, h := range required {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("control-well table missing header %s", h)
		}
	}

	layout := &Layout{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := strconv.Atoi(record[index[HeaderWellRow]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, HeaderWellRow, err)
		}
		col, err := strconv.Atoi(record[index[HeaderWellColumn]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s: %w", line, HeaderWellColumn, err)
		}

		well := Well{
			PlateBarcode: record[index[HeaderPlateBarcode]],
			Row:          row,
			Column:       col,
			Positive:     record[index[HeaderWellType]] == WellTypePositive,
		}
		if well.Positive {
			layout.Positive = append(layout.Positive, well)
		} else {
			layout.Negative = append(layout.Negative, well)
		}
	}

	if len(layout.Positive) == 0 {
		return nil, fmt.Errorf("control-well table defines no positive wells")
	}
	return layout, nil
}
