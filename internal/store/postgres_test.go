package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkhalidi/rattil/internal/align"
)

// mockRow returns canned scan values, or an error.
type mockRow struct {
	values []any
	err    error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignValues(dest, r.values)
}

// mockRows iterates over canned rows.
type mockRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *mockRows) Close()                                       {}
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *mockRows) Scan(dest ...any) error { return assignValues(dest, r.rows[r.idx-1]) }
func (r *mockRows) Values() ([]any, error) { return nil, nil }
func (r *mockRows) RawValues() [][]byte    { return nil }
func (r *mockRows) Conn() *pgx.Conn        { return nil }

// assignValues copies src values into scan destinations.
func assignValues(dest, src []any) error {
	if len(dest) != len(src) {
		return errors.New("scan destination count mismatch")
	}
	for i, v := range src {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *float64:
			*d = v.(float64)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}

// mockDB records the queries it receives and serves canned results.
type mockDB struct {
	row     *mockRow
	rows    *mockRows
	rowsErr error
	queries []string
}

func (db *mockDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	return db.row
}

func (db *mockDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	if db.rowsErr != nil {
		return nil, db.rowsErr
	}
	return db.rows, nil
}

func (db *mockDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.queries = append(db.queries, sql)
	return pgconn.CommandTag{}, nil
}

func recordRow(id string, createdAt time.Time) []any {
	return []any{
		id, 1, "الفاتحة",
		75.0, 100.0, 4, 4,
		[]byte(`[{"kind":"incorrect","position":2,"spoken":"ملك","expected":"مالك","similarity":75}]`),
		[]byte(`[]`), []byte(`[]`),
		[]byte(`["راجع مخارج الحروف"]`),
		createdAt, createdAt,
	}
}

func TestPostgres_SaveSetsCreatedAt(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	db := &mockDB{row: &mockRow{values: []any{now}}}
	s := NewPostgres(db)

	rec := &Record{ID: "session-1", SurahNumber: 1, Report: align.Report{GeneratedAt: now}}
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, now)
	}
}

func TestPostgres_SaveDuplicate(t *testing.T) {
	t.Parallel()

	db := &mockDB{row: &mockRow{err: &pgconn.PgError{Code: "23505"}}}
	s := NewPostgres(db)

	err := s.Save(context.Background(), &Record{ID: "dup"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Save() error = %v, want ErrDuplicateID", err)
	}
}

func TestPostgres_GetAbsent(t *testing.T) {
	t.Parallel()

	db := &mockDB{row: &mockRow{err: pgx.ErrNoRows}}
	s := NewPostgres(db)

	got, err := s.Get(context.Background(), "no-such")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for absent record", got)
	}
}

func TestPostgres_GetUnmarshalsJSONB(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	db := &mockDB{row: &mockRow{values: recordRow("session-1", now)}}
	s := NewPostgres(db)

	got, err := s.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "session-1" {
		t.Errorf("ID = %q, want %q", got.ID, "session-1")
	}
	if len(got.Report.Incorrect) != 1 || got.Report.Incorrect[0].Expected != "مالك" {
		t.Errorf("Incorrect = %+v, want one event for مالك", got.Report.Incorrect)
	}
	if len(got.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want one entry", got.Suggestions)
	}
}

func TestPostgres_List(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	db := &mockDB{rows: &mockRows{rows: [][]any{
		recordRow("session-2", now),
		recordRow("session-1", now.Add(-time.Minute)),
	}}}
	s := NewPostgres(db)

	got, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(got))
	}
	if got[0].ID != "session-2" {
		t.Errorf("first record = %q, want %q", got[0].ID, "session-2")
	}
}

func TestMarshalLists_EmptyIsBrackets(t *testing.T) {
	t.Parallel()

	incorrect, missing, extra, suggestions, err := marshalLists(&Record{})
	if err != nil {
		t.Fatalf("marshalLists() error = %v", err)
	}
	for name, b := range map[string][]byte{
		"incorrect": incorrect, "missing": missing,
		"extra": extra, "suggestions": suggestions,
	} {
		if string(b) != "[]" {
			t.Errorf("%s = %s, want []", name, b)
		}
	}
}
