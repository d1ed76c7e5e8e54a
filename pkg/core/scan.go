package core

// Point is a single (m/z, intensity) pair within one scan.
type Point struct {
	MZ        float64
	Intensity float64
}

// ScanHeader describes one scan's acquisition metadata.
type ScanHeader struct {
	MSLevel       int
	RetentionTime float64 // seconds
}

// Scan couples a header with the unordered points acquired at that
// retention time.
type Scan struct {
	Header ScanHeader
	Points []Point
}

// ScanFile is the in-memory form of one raw instrument file: an ordered
// sequence of scans keyed by the source filename. Immutable once loaded;
// the scan cache persists it keyed by filename and fails loudly when a
// cached entry's filename does not match the requested one.
type ScanFile struct {
	Filename string
	Scans    []Scan
}

// PointCount returns the total number of (m/z, intensity) pairs across
// all scans.
func (sf *ScanFile) PointCount() int {
	n := 0
	for _, s := range sf.Scans {
		n += len(s.Points)
	}
	return n
}
