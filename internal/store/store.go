// Package store persists finished session reports.
//
// Two backends are provided: PostgreSQL for shared deployments and SQLite
// for single-machine installs, selected by configuration. [Memory] backs
// tests and ephemeral runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mkhalidi/rattil/internal/align"
)

// ErrDuplicateID is returned by Save when a record with the same ID already
// exists. Reports are immutable, so a duplicate save is always caller error.
var ErrDuplicateID = errors.New("store: report id already exists")

// Record is one persisted session report plus its session metadata.
type Record struct {
	// ID is the session identifier, unique per record.
	ID string `json:"id"`

	// SurahNumber and SurahName identify the recited chapter.
	SurahNumber int    `json:"surah_number"`
	SurahName   string `json:"surah_name"`

	// Report is the immutable alignment report.
	Report align.Report `json:"report"`

	// Suggestions holds the advisory text produced for this session.
	Suggestions []string `json:"suggestions"`

	// CreatedAt is when the record was persisted.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves session report records. Implementations must
// be safe for concurrent use.
type Store interface {
	// Save persists a new record. Returns [ErrDuplicateID] when a record
	// with the same ID exists.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID. Returns (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns the most recent records, newest first, capped at limit.
	// A limit of zero or less returns all records.
	List(ctx context.Context, limit int) ([]Record, error)

	// Ping probes the backing storage for readiness checks.
	Ping(ctx context.Context) error
}

// emptyEvents returns s if non-nil, otherwise an empty non-nil slice. This
// ensures JSON marshalling produces "[]" instead of "null".
func emptyEvents(s []align.Event) []align.Event {
	if s == nil {
		return []align.Event{}
	}
	return s
}

// emptyStrings returns s if non-nil, otherwise an empty non-nil slice.
func emptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
