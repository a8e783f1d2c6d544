package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteSchema is the DDL for the SQLite backend. JSON lists are stored as
// TEXT; timestamps as RFC 3339 strings.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS recitation_reports (
    id           TEXT PRIMARY KEY,
    surah_number INTEGER NOT NULL,
    surah_name   TEXT NOT NULL DEFAULT '',
    accuracy     REAL NOT NULL,
    completion   REAL NOT NULL,
    total_words  INTEGER NOT NULL,
    spoken_words INTEGER NOT NULL,
    incorrect    TEXT NOT NULL DEFAULT '[]',
    missing      TEXT NOT NULL DEFAULT '[]',
    extra        TEXT NOT NULL DEFAULT '[]',
    suggestions  TEXT NOT NULL DEFAULT '[]',
    generated_at TEXT NOT NULL,
    created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recitation_reports_created ON recitation_reports(created_at DESC);
`

// SQLite is a [Store] backed by a local SQLite database file. Suited to
// single-machine deployments where running PostgreSQL is overkill.
type SQLite struct {
	db *sql.DB
}

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if necessary) the SQLite database at path and
// ensures the schema exists. The parent directory is created when missing.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save inserts a new report record.
func (s *SQLite) Save(ctx context.Context, rec *Record) error {
	incorrect, missing, extra, suggestions, err := marshalLists(rec)
	if err != nil {
		return err
	}

	rec.CreatedAt = time.Now().UTC()
	const query = `
		INSERT INTO recitation_reports (
			id, surah_number, surah_name, accuracy, completion,
			total_words, spoken_words, incorrect, missing, extra,
			suggestions, generated_at, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.SurahNumber, rec.SurahName,
		rec.Report.Accuracy, rec.Report.Completion,
		rec.Report.TotalWords, rec.Report.SpokenWords,
		string(incorrect), string(missing), string(extra), string(suggestions),
		rec.Report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		return fmt.Errorf("store: save %q: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a record by ID. Returns (nil, nil) when absent.
func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT` + selectColumns + ` FROM recitation_reports WHERE id = ?`

	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get %q: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT` + selectColumns + ` FROM recitation_reports ORDER BY created_at DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return records, nil
}

// Ping probes the database file.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// sqlScanner is the common scanning surface of *sql.Row and *sql.Rows.
type sqlScanner interface {
	Scan(dest ...any) error
}

// scanSQLiteRecord reads one row into a [Record], deserialising JSON lists
// and RFC 3339 timestamps.
func scanSQLiteRecord(row sqlScanner) (*Record, error) {
	var rec Record
	var incorrect, missing, extra, suggest string
	var generatedAt, createdAt string

	err := row.Scan(
		&rec.ID, &rec.SurahNumber, &rec.SurahName,
		&rec.Report.Accuracy, &rec.Report.Completion,
		&rec.Report.TotalWords, &rec.Report.SpokenWords,
		&incorrect, &missing, &extra, &suggest,
		&generatedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(incorrect), &rec.Report.Incorrect); err != nil {
		return nil, fmt.Errorf("unmarshal incorrect: %w", err)
	}
	if err := json.Unmarshal([]byte(missing), &rec.Report.Missing); err != nil {
		return nil, fmt.Errorf("unmarshal missing: %w", err)
	}
	if err := json.Unmarshal([]byte(extra), &rec.Report.Extra); err != nil {
		return nil, fmt.Errorf("unmarshal extra: %w", err)
	}
	if err := json.Unmarshal([]byte(suggest), &rec.Suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	if rec.Report.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return nil, fmt.Errorf("parse generated_at: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}
