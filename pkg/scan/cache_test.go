package scan

import (
	"path/filepath"
	"strings"
	"testing"

	"iondetect/pkg/core"
)

func sampleScanFile(filename string) *core.ScanFile {
	return &core.ScanFile{
		Filename: filename,
		Scans: []core.Scan{
			{
				Header: core.ScanHeader{MSLevel: 1, RetentionTime: 12.5},
				Points: []core.Point{
					{MZ: 400.1001, Intensity: 15000.5},
					{MZ: 400.1002, Intensity: 200.25},
				},
			},
			{
				Header: core.ScanHeader{MSLevel: 2, RetentionTime: 13.0},
				Points: []core.Point{
					{MZ: 181.0707, Intensity: 99999},
				},
			},
			{
				Header: core.ScanHeader{MSLevel: 1, RetentionTime: 14.5},
				Points: nil,
			},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plate1_A_1.scancache.db")
	original := sampleScanFile("plate1_A_1.mzML")

	if err := WriteCacheFile(path, original); err != nil {
		t.Fatalf("WriteCacheFile() unexpected error: %v", err)
	}

	loaded, err := ReadCacheFile(path, "plate1_A_1.mzML")
	if err != nil {
		t.Fatalf("ReadCacheFile() unexpected error: %v", err)
	}

	if loaded.Filename != original.Filename {
		t.Errorf("filename = %q, want %q", loaded.Filename, original.Filename)
	}
	if len(loaded.Scans) != len(original.Scans) {
		t.Fatalf("got %d scans, want %d", len(loaded.Scans), len(original.Scans))
	}
	for i, scan := range loaded.Scans {
		want := original.Scans[i]
		if scan.Header != want.Header {
			t.Errorf("scan %d header = %+v, want %+v", i, scan.Header, want.Header)
		}
		if len(scan.Points) != len(want.Points) {
			t.Fatalf("scan %d has %d points, want %d", i, len(scan.Points), len(want.Points))
		}
		for j, p := range scan.Points {
			// Blobs are bit-exact float64, so equality is exact.
			if p != want.Points[j] {
				t.Errorf("scan %d point %d = %+v, want %+v", i, j, p, want.Points[j])
			}
		}
	}
}

func TestCacheFilenameMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plate1_A_1.scancache.db")

	if err := WriteCacheFile(path, sampleScanFile("plate1_A_1.mzML")); err != nil {
		t.Fatalf("WriteCacheFile() unexpected error: %v", err)
	}

	_, err := ReadCacheFile(path, "plate2_B_2.mzML")
	if err == nil {
		t.Fatal("filename mismatch on cache read must fail")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("error %q should mention the mismatch", err)
	}
}

func TestCachePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/data/plate1_A_1.mzML", "/data/plate1_A_1.scancache.db"},
		{"plate1_A_1.mzML", "plate1_A_1.scancache.db"},
	}
	for _, tt := range tests {
		if got := CachePath(tt.raw); got != tt.want {
			t.Errorf("CachePath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCacheGetReadThrough(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "well.mzML")
	cachePath := CachePath(rawPath)

	// Seed the on-disk cache directly; Get must serve from it without a
	// raw file present.
	if err := WriteCacheFile(cachePath, sampleScanFile("well.mzML")); err != nil {
		t.Fatalf("WriteCacheFile() unexpected error: %v", err)
	}

	cache := NewCache()
	sf, err := cache.Get(rawPath)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if sf.PointCount() != 3 {
		t.Errorf("point count = %d, want 3", sf.PointCount())
	}

	// Second lookup is served from memory; identical pointer.
	again, err := cache.Get(rawPath)
	if err != nil {
		t.Fatalf("Get() unexpected error on reuse: %v", err)
	}
	if again != sf {
		t.Error("second Get() should reuse the materialized ScanFile")
	}
}
