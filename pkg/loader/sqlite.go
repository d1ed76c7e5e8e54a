// Package loader writes analyzed metabolite hits into a SQLite
// presentation database consumed by the reporting front end.
package loader

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"iondetect/pkg/core"
)

const headerDateFormat = "2006-01-02"

// Loader handles writing analysis results to a presentation database.
type Loader struct {
	db           *sql.DB
	outputPath   string
	resultStmt   *sql.Stmt
	moleculeStmt *sql.Stmt
	resultID     int
}

// NewLoader opens (or creates) the presentation database at outputPath.
func NewLoader(outputPath string) (*Loader, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l := &Loader{
		db:         db,
		outputPath: outputPath,
		resultID:   1,
	}

	if err := l.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := l.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return l, nil
}

func (l *Loader) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ResultTable (
		ResultId INTEGER PRIMARY KEY,
		SourceWell TEXT,
		MassCharge DOUBLE,
		IsValid BOOL
	);

	CREATE TABLE IF NOT EXISTS MoleculeTable (
		MoleculeId INTEGER PRIMARY KEY AUTOINCREMENT,
		ResultId INTEGER REFERENCES ResultTable(ResultId),
		Identifier TEXT,
		Ion TEXT,
		SNR DOUBLE,
		RetentionTime DOUBLE,
		Intensity DOUBLE,
		PlotPath TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Description TEXT
	);
	`

	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (l *Loader) prepareStatements() error {
	var err error

	l.resultStmt, err = l.db.Prepare(`
		INSERT INTO ResultTable (ResultId, SourceWell, MassCharge, IsValid)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result statement: %w", err)
	}

	l.moleculeStmt, err = l.db.Prepare(`
		INSERT INTO MoleculeTable (ResultId, Identifier, Ion, SNR, RetentionTime, Intensity, PlotPath)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare molecule statement: %w", err)
	}

	return nil
}

// LoadModel inserts every per-mass record of one well's analysis,
// tagging each row with the source well identifier ("post_process" for
// the consensus set).
func (l *Loader) LoadModel(sourceWell string, model *core.AnalysisModel) error {
	for _, r := range model.Results {
		if _, err := l.resultStmt.Exec(l.resultID, sourceWell, r.MZ, r.IsValid); err != nil {
			return fmt.Errorf("failed to insert result for m/z %f: %w", r.MZ, err)
		}
		for _, m := range r.Molecules {
			_, err := l.moleculeStmt.Exec(l.resultID, m.Inchi, m.Ion, m.SNR, m.Time, m.Intensity, m.PlotPath)
			if err != nil {
				return fmt.Errorf("failed to insert molecule %s: %w", m.Inchi, err)
			}
		}
		l.resultID++
	}
	return nil
}

// Finalize writes the header row and closes the database.
func (l *Loader) Finalize() error {
	_, err := l.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Description)
		VALUES (?, ?, ?)
	`, 1, time.Now().Format(headerDateFormat), "iondetect analysis results")
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	if l.resultStmt != nil {
		l.resultStmt.Close()
	}
	if l.moleculeStmt != nil {
		l.moleculeStmt.Close()
	}

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Close closes the database connection (alias for Finalize)
func (l *Loader) Close() error {
	return l.Finalize()
}
