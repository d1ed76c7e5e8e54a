package scan

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"iondetect/pkg/core"
)

// cacheExt replaces the raw file's extension when deriving the cache
// path, e.g. plate1_A_1.mzML -> plate1_A_1.scancache.db.
const cacheExt = ".scancache.db"

// Cache is a read-through store of parsed scan files, keyed by source
// filename. Entries are SQLite files written next to the raw data.
// Population writes to a temporary file and renames it into place, so a
// concurrent reader never observes a partially written entry; racing
// writers resolve last-writer-wins. An in-memory layer keeps each
// ScanFile materialized once per process so per-mass queries reuse it.
type Cache struct {
	mu     sync.Mutex
	loaded map[string]*core.ScanFile
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{loaded: make(map[string]*core.ScanFile)}
}

// CachePath derives the on-disk cache filename for a raw scan file.
func CachePath(rawPath string) string {
	ext := filepath.Ext(rawPath)
	return strings.TrimSuffix(rawPath, ext) + cacheExt
}

// Get returns the parsed ScanFile for rawPath, reading the on-disk cache
// when present and parsing + populating it otherwise.
func (c *Cache) Get(rawPath string) (*core.ScanFile, error) {
	key := filepath.Base(rawPath)

	c.mu.Lock()
	if sf, ok := c.loaded[key]; ok {
		c.mu.Unlock()
		return sf, nil
	}
	c.mu.Unlock()

	cachePath := CachePath(rawPath)
	if _, err := os.Stat(cachePath); err == nil {
		sf, err := ReadCacheFile(cachePath, key)
		if err != nil {
			return nil, err
		}
		c.store(key, sf)
		return sf, nil
	}

	sf, err := ReadMzML(rawPath)
	if err != nil {
		return nil, err
	}
	if err := WriteCacheFile(cachePath, sf); err != nil {
		return nil, err
	}
	c.store(key, sf)
	return sf, nil
}

func (c *Cache) store(key string, sf *core.ScanFile) {
	c.mu.Lock()
	c.loaded[key] = sf
	c.mu.Unlock()
}

// Warm parses rawPath and populates its on-disk cache entry without
// retaining the scans in memory. Used by the directory watcher.
func (c *Cache) Warm(rawPath string) error {
	cachePath := CachePath(rawPath)
	if _, err := os.Stat(cachePath); err == nil {
		return nil
	}
	sf, err := ReadMzML(rawPath)
	if err != nil {
		return err
	}
	return WriteCacheFile(cachePath, sf)
}

// WriteCacheFile serializes a ScanFile to a SQLite cache file at path.
// The write lands in a temporary file first and is renamed into place.
func WriteCacheFile(path string, sf *core.ScanFile) error {
	tmp := path + ".tmp"
	os.Remove(tmp)

	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := writeCache(db, sf); err != nil {
		db.Close()
		os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close cache database: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move cache into place: %w", err)
	}
	return nil
}

func writeCache(db *sql.DB, sf *core.ScanFile) error {
	schema := `
	CREATE TABLE IF NOT EXISTS SourceTable (
		Filename TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ScanTable (
		ScanIndex INTEGER PRIMARY KEY,
		MSLevel INTEGER,
		RetentionTime DOUBLE,
		blobMass BLOB,
		blobIntensity BLOB
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cache tables: %w", err)
	}

	if _, err := db.Exec(`INSERT INTO SourceTable (Filename) VALUES (?)`, sf.Filename); err != nil {
		return fmt.Errorf("failed to insert source row: %w", err)
	}

	stmt, err := db.Prepare(`
		INSERT INTO ScanTable (ScanIndex, MSLevel, RetentionTime, blobMass, blobIntensity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare scan statement: %w", err)
	}
	defer stmt.Close()

	for i, scan := range sf.Scans {
		mzBlob := encodePointsFloat64(scan.Points, true)
		intBlob := encodePointsFloat64(scan.Points, false)
		if _, err := stmt.Exec(i, scan.Header.MSLevel, scan.Header.RetentionTime, mzBlob, intBlob); err != nil {
			return fmt.Errorf("failed to insert scan %d: %w", i, err)
		}
	}
	return nil
}

// ReadCacheFile loads a ScanFile from a cache file, verifying that the
// stored filename matches the requested one. A mismatch means the cache
// entry belongs to different source data and is a hard failure.
func ReadCacheFile(path, wantFilename string) (*core.ScanFile, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()

	var filename string
	if err := db.QueryRow(`SELECT Filename FROM SourceTable`).Scan(&filename); err != nil {
		return nil, fmt.Errorf("failed to read cache source row: %w", err)
	}
	if filename != wantFilename {
		return nil, fmt.Errorf("cache at %s holds %q, requested %q: filename mismatch", path, filename, wantFilename)
	}

	rows, err := db.Query(`SELECT MSLevel, RetentionTime, blobMass, blobIntensity FROM ScanTable ORDER BY ScanIndex`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached scans: %w", err)
	}
	defer rows.Close()

	sf := &core.ScanFile{Filename: filename}
	for rows.Next() {
		var msLevel int
		var rt float64
		var mzBlob, intBlob []byte
		if err := rows.Scan(&msLevel, &rt, &mzBlob, &intBlob); err != nil {
			return nil, fmt.Errorf("failed to scan cached row: %w", err)
		}

		mzs, err := decodeFloat64Blob(mzBlob)
		if err != nil {
			return nil, fmt.Errorf("corrupt m/z blob: %w", err)
		}
		intensities, err := decodeFloat64Blob(intBlob)
		if err != nil {
			return nil, fmt.Errorf("corrupt intensity blob: %w", err)
		}
		if len(mzs) != len(intensities) {
			return nil, fmt.Errorf("cached scan has %d m/z values but %d intensities", len(mzs), len(intensities))
		}

		scan := core.Scan{Header: core.ScanHeader{MSLevel: msLevel, RetentionTime: rt}}
		scan.Points = make([]core.Point, len(mzs))
		for i := range mzs {
			scan.Points[i] = core.Point{MZ: mzs[i], Intensity: intensities[i]}
		}
		sf.Scans = append(sf.Scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached scans: %w", err)
	}

	return sf, nil
}

// encodePointsFloat64 encodes point data as a little-endian float64 blob.
func encodePointsFloat64(points []core.Point, useMZ bool) []byte {
	buf := make([]byte, len(points)*8)
	for i, p := range points {
		var value float64
		if useMZ {
			value = p.MZ
		} else {
			value = p.Intensity
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

func decodeFloat64Blob(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d not a multiple of 8", len(blob))
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values, nil
}
