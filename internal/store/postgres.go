package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the recitation_reports table. Execute it via
// [Postgres.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS recitation_reports (
    id           TEXT PRIMARY KEY,
    surah_number INTEGER NOT NULL,
    surah_name   TEXT NOT NULL DEFAULT '',
    accuracy     DOUBLE PRECISION NOT NULL,
    completion   DOUBLE PRECISION NOT NULL,
    total_words  INTEGER NOT NULL,
    spoken_words INTEGER NOT NULL,
    incorrect    JSONB NOT NULL DEFAULT '[]',
    missing      JSONB NOT NULL DEFAULT '[]',
    extra        JSONB NOT NULL DEFAULT '[]',
    suggestions  JSONB NOT NULL DEFAULT '[]',
    generated_at TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_recitation_reports_surah ON recitation_reports(surah_number);
CREATE INDEX IF NOT EXISTS idx_recitation_reports_created ON recitation_reports(created_at DESC);
`

// DB is the database interface used by [Postgres]. Both *pgxpool.Pool and
// *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres is a [Store] backed by PostgreSQL. Error event lists and
// suggestions are serialised as JSONB.
type Postgres struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*Postgres)(nil)

// NewPostgres creates a [Postgres] store over the given connection or pool.
// Call [Postgres.Migrate] once before issuing queries.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate executes the [Schema] DDL, creating the table and indexes if they
// do not already exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Save inserts a new report record.
func (s *Postgres) Save(ctx context.Context, rec *Record) error {
	incorrect, missing, extra, suggestions, err := marshalLists(rec)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO recitation_reports (
			id, surah_number, surah_name, accuracy, completion,
			total_words, spoken_words, incorrect, missing, extra,
			suggestions, generated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`

	err = s.db.QueryRow(ctx, query,
		rec.ID, rec.SurahNumber, rec.SurahName,
		rec.Report.Accuracy, rec.Report.Completion,
		rec.Report.TotalWords, rec.Report.SpokenWords,
		incorrect, missing, extra, suggestions, rec.Report.GeneratedAt,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		return fmt.Errorf("store: save %q: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `
	id, surah_number, surah_name, accuracy, completion,
	total_words, spoken_words, incorrect, missing, extra,
	suggestions, generated_at, created_at`

// Get retrieves a record by ID. Returns (nil, nil) when absent.
func (s *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT` + selectColumns + ` FROM recitation_reports WHERE id = $1`

	rec, err := scanRecord(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get %q: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (s *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT` + selectColumns + ` FROM recitation_reports ORDER BY created_at DESC`
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
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

// Ping probes the database connection.
func (s *Postgres) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// scanRecord reads one row into a [Record], deserialising the JSONB columns.
func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var incorrect, missing, extra, suggest []byte
	err := row.Scan(
		&rec.ID, &rec.SurahNumber, &rec.SurahName,
		&rec.Report.Accuracy, &rec.Report.Completion,
		&rec.Report.TotalWords, &rec.Report.SpokenWords,
		&incorrect, &missing, &extra, &suggest,
		&rec.Report.GeneratedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(incorrect, &rec.Report.Incorrect); err != nil {
		return nil, fmt.Errorf("unmarshal incorrect: %w", err)
	}
	if err := json.Unmarshal(missing, &rec.Report.Missing); err != nil {
		return nil, fmt.Errorf("unmarshal missing: %w", err)
	}
	if err := json.Unmarshal(extra, &rec.Report.Extra); err != nil {
		return nil, fmt.Errorf("unmarshal extra: %w", err)
	}
	if err := json.Unmarshal(suggest, &rec.Suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return &rec, nil
}

// marshalLists serialises the record's event and suggestion lists, forcing
// "[]" instead of "null" for empty slices.
func marshalLists(rec *Record) (incorrect, missing, extra, suggestions []byte, err error) {
	if incorrect, err = json.Marshal(emptyEvents(rec.Report.Incorrect)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("store: marshal incorrect: %w", err)
	}
	if missing, err = json.Marshal(emptyEvents(rec.Report.Missing)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("store: marshal missing: %w", err)
	}
	if extra, err = json.Marshal(emptyEvents(rec.Report.Extra)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("store: marshal extra: %w", err)
	}
	if suggestions, err = json.Marshal(emptyStrings(rec.Suggestions)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("store: marshal suggestions: %w", err)
	}
	return incorrect, missing, extra, suggestions, nil
}

// isDuplicateKeyError checks for a PostgreSQL unique violation (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
