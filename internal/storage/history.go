// Package storage persists run history in SQLite so past batches can be
// reviewed and re-exported.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/pdfcite/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Run summarizes one processing batch.
type Run struct {
	ID        int64     `json:"id"`
	Directory string    `json:"directory"`
	StartedAt time.Time `json:"started_at"`
	DryRun    bool      `json:"dry_run"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			directory TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			dry_run INTEGER NOT NULL,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			new_filename TEXT,
			title TEXT,
			authors_json TEXT,
			pub_year INTEGER,
			confidence INTEGER NOT NULL,
			used_ocr INTEGER NOT NULL,
			ocr_backend TEXT,
			status TEXT NOT NULL,
			errors_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores one batch and its records, returning the run ID.
func (d *DB) SaveRun(directory string, dryRun bool, startedAt time.Time, records []*paper.Record) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	succeeded := 0
	for _, rec := range records {
		if rec.Status == paper.StatusSuccess {
			succeeded++
		}
	}

	res, err := tx.Exec(`
		INSERT INTO runs (directory, started_at, dry_run, total, succeeded, failed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		directory, startedAt.Unix(), boolInt(dryRun),
		len(records), succeeded, len(records)-succeeded,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (
			run_id, source_path, new_filename, title, authors_json,
			pub_year, confidence, used_ocr, ocr_backend, status, errors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		authorsJSON, err := json.Marshal(rec.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", rec.SourcePath, err)
		}
		errorsJSON, err := json.Marshal(rec.Errors)
		if err != nil {
			return 0, fmt.Errorf("marshaling errors for %s: %w", rec.SourcePath, err)
		}
		if _, err := stmt.Exec(
			runID, rec.SourcePath, rec.NewFilename, rec.Title, string(authorsJSON),
			rec.Year, rec.Confidence, boolInt(rec.UsedOCR), rec.OCRBackend,
			rec.Status, string(errorsJSON),
		); err != nil {
			return 0, fmt.Errorf("inserting record for %s: %w", rec.SourcePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns runs, most recent first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, directory, started_at, dry_run, total, succeeded, failed
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		var dry int
		if err := rows.Scan(&r.ID, &r.Directory, &started, &dry, &r.Total, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.DryRun = dry != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecordsForRun returns the records stored for one run, in insertion order.
func (d *DB) RecordsForRun(runID int64) ([]*paper.Record, error) {
	rows, err := d.db.Query(`
		SELECT source_path, new_filename, title, authors_json,
			pub_year, confidence, used_ocr, ocr_backend, status, errors_json
		FROM records WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []*paper.Record
	for rows.Next() {
		rec := &paper.Record{}
		var authorsJSON, errorsJSON string
		var usedOCR int
		if err := rows.Scan(
			&rec.SourcePath, &rec.NewFilename, &rec.Title, &authorsJSON,
			&rec.Year, &rec.Confidence, &usedOCR, &rec.OCRBackend,
			&rec.Status, &errorsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.UsedOCR = usedOCR != 0
		if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
			return nil, fmt.Errorf("unmarshaling authors for %s: %w", rec.SourcePath, err)
		}
		if err := json.Unmarshal([]byte(errorsJSON), &rec.Errors); err != nil {
			return nil, fmt.Errorf("unmarshaling errors for %s: %w", rec.SourcePath, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
