// Package scan reads raw LCMS scan files and maintains the on-disk cache
// of parsed scans keyed by source filename.
package scan

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"iondetect/pkg/core"
)

// Controlled-vocabulary accessions used when reading mzML
// (http://www.peptideatlas.org/tmp/mzML1.1.0.html).
const (
	cvMSLevel        = "MS:1000511"
	cvScanStartTime  = "MS:1000016"
	cvMzArray        = "MS:1000514"
	cvIntensityArray = "MS:1000515"
	cvFloat64        = "MS:1000523"
	cvFloat32        = "MS:1000521"
	cvZlib           = "MS:1000574"
	unitMinute       = "UO:0000031"
)

type cvParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}

type binaryDataArray struct {
	CvPar  []cvParam `xml:"cvParam"`
	Binary string    `xml:"binary"`
}

type xmlScan struct {
	CvPar []cvParam `xml:"cvParam"`
}

type xmlSpectrum struct {
	Index    int       `xml:"index,attr"`
	ID       string    `xml:"id,attr"`
	CvPar    []cvParam `xml:"cvParam"`
	ScanList struct {
		Scans []xmlScan `xml:"scan"`
	} `xml:"scanList"`
	BinaryDataArrayList struct {
		Arrays []binaryDataArray `xml:"binaryDataArray"`
	} `xml:"binaryDataArrayList"`
}

type mzMLContent struct {
	XMLName xml.Name `xml:"mzML"`
	Run     struct {
		SpectrumList struct {
			Spectrum []xmlSpectrum `xml:"spectrum"`
		} `xml:"spectrumList"`
	} `xml:"run"`
}

// ReadMzML parses an mzML file into a ScanFile. Only the spectrum list is
// consumed: per spectrum the MS level, the scan start time (normalized to
// seconds) and the m/z and intensity binary arrays.
func ReadMzML(path string) (*core.ScanFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan file: %w", err)
	}
	defer f.Close()

	var content mzMLContent
	if err := xml.NewDecoder(f).Decode(&content); err != nil {
		return nil, fmt.Errorf("failed to parse mzML %s: %w", path, err)
	}

	sf := &core.ScanFile{Filename: filepath.Base(path)}
	for _, sp := range content.Run.SpectrumList.Spectrum {
		scan, err := convertSpectrum(sp)
		if err != nil {
			return nil, fmt.Errorf("spectrum %d (%s): %w", sp.Index, sp.ID, err)
		}
		sf.Scans = append(sf.Scans, scan)
	}

	return sf, nil
}

func convertSpectrum(sp xmlSpectrum) (core.Scan, error) {
	var scan core.Scan

	for _, cv := range sp.CvPar {
		if cv.Accession == cvMSLevel {
			level, err := strconv.Atoi(cv.Value)
			if err != nil {
				return scan, fmt.Errorf("invalid ms level %q: %w", cv.Value, err)
			}
			scan.Header.MSLevel = level
		}
	}

	for _, s := range sp.ScanList.Scans {
		for _, cv := range s.CvPar {
			if cv.Accession != cvScanStartTime {
				continue
			}
			t, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return scan, fmt.Errorf("invalid scan start time %q: %w", cv.Value, err)
			}
			if cv.UnitAccession == unitMinute {
				t *= 60
			}
			scan.Header.RetentionTime = t
		}
	}

	var mzs, intensities []float64
	for _, arr := range sp.BinaryDataArrayList.Arrays {
		values, kind, err := decodeBinaryArray(arr)
		if err != nil {
			return scan, err
		}
		switch kind {
		case cvMzArray:
			mzs = values
		case cvIntensityArray:
			intensities = values
		}
	}

	if len(mzs) != len(intensities) {
		return scan, fmt.Errorf("m/z array length %d does not match intensity array length %d", len(mzs), len(intensities))
	}

	scan.Points = make([]core.Point, len(mzs))
	for i := range mzs {
		scan.Points[i] = core.Point{MZ: mzs[i], Intensity: intensities[i]}
	}
	return scan, nil
}

// decodeBinaryArray decodes one base64 (optionally zlib-compressed)
// binary data array and reports which array kind it is.
func decodeBinaryArray(arr binaryDataArray) ([]float64, string, error) {
	kind := ""
	is64 := true
	compressed := false
	for _, cv := range arr.CvPar {
		switch cv.Accession {
		case cvMzArray, cvIntensityArray:
			kind = cv.Accession
		case cvFloat32:
			is64 = false
		case cvFloat64:
			is64 = true
		case cvZlib:
			compressed = true
		}
	}

	raw, err := base64.StdEncoding.DecodeString(arr.Binary)
	if err != nil {
		return nil, kind, fmt.Errorf("invalid base64 binary data: %w", err)
	}

	if compressed {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, kind, fmt.Errorf("invalid zlib binary data: %w", err)
		}
		raw, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, kind, fmt.Errorf("failed to decompress binary data: %w", err)
		}
	}

	width := 8
	if !is64 {
		width = 4
	}
	if len(raw)%width != 0 {
		return nil, kind, fmt.Errorf("binary data length %d not a multiple of %d", len(raw), width)
	}

	values := make([]float64, len(raw)/width)
	for i := range values {
		if is64 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	}
	return values, kind, nil
}
