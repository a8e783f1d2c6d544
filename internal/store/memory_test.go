package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/store"
)

func sampleRecord(id string) *store.Record {
	return &store.Record{
		ID:          id,
		SurahNumber: 1,
		SurahName:   "الفاتحة",
		Report: align.Report{
			Accuracy:    75,
			Completion:  100,
			TotalWords:  4,
			SpokenWords: 4,
			Incorrect: []align.Event{
				{Kind: align.KindIncorrect, Position: 2, Spoken: "ملك", Expected: "مالك", Similarity: 75},
			},
			GeneratedAt: time.Now().UTC(),
		},
		Suggestions: []string{"راجع مخارج الحروف"},
	}
}

func TestMemory_SaveAndGet(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	rec := sampleRecord("session-1")
	if err := m.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Save() did not set CreatedAt")
	}

	got, err := m.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want record")
	}
	if got.SurahName != rec.SurahName {
		t.Errorf("SurahName = %q, want %q", got.SurahName, rec.SurahName)
	}
	if len(got.Report.Incorrect) != 1 {
		t.Errorf("Incorrect events = %d, want 1", len(got.Report.Incorrect))
	}
}

func TestMemory_GetAbsent(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	got, err := m.Get(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for absent record", got)
	}
}

func TestMemory_DuplicateID(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	if err := m.Save(context.Background(), sampleRecord("dup")); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	err := m.Save(context.Background(), sampleRecord("dup"))
	if !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("second Save() error = %v, want ErrDuplicateID", err)
	}
}

func TestMemory_ListNewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	for i := 0; i < 5; i++ {
		rec := sampleRecord(fmt.Sprintf("session-%d", i))
		if err := m.Save(context.Background(), rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		// Distinct timestamps keep the ordering deterministic.
		time.Sleep(time.Millisecond)
	}

	all, err := m.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("List(0) returned %d records, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Errorf("List() not ordered newest first at index %d", i)
		}
	}

	limited, err := m.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d records, want 2", len(limited))
	}
	if limited[0].ID != all[0].ID {
		t.Errorf("List(2) first = %q, want %q", limited[0].ID, all[0].ID)
	}
}

func TestMemory_Ping(t *testing.T) {
	t.Parallel()

	if err := store.NewMemory().Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
