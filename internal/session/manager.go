// Package session manages the lifecycle of live recitation sessions: start,
// incremental transcript ingestion, and final report generation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mkhalidi/rattil/internal/advice"
	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/arabic"
	"github.com/mkhalidi/rattil/internal/observe"
	"github.com/mkhalidi/rattil/internal/quran"
	"github.com/mkhalidi/rattil/internal/store"
)

// ErrSessionNotFound is returned when the given session ID matches no active
// session. Finished sessions are removed from the registry, so pushing to a
// finished session also yields this error.
var ErrSessionNotFound = errors.New("session: not found")

// Info holds metadata about an active session.
type Info struct {
	// ID is the unique identifier for this session.
	ID string `json:"id"`

	// SurahNumber and SurahName identify the recited chapter.
	SurahNumber int    `json:"surah_number"`
	SurahName   string `json:"surah_name"`

	// TotalWords is the reference word count after normalization.
	TotalWords int `json:"total_words"`

	// StartedAt is when the session was started.
	StartedAt time.Time `json:"started_at"`
}

// Progress is a point-in-time snapshot of an active session.
type Progress struct {
	Info Info `json:"info"`

	// Cursor is the next unconsumed reference position.
	Cursor int `json:"cursor"`

	// Events are the error events accumulated so far, in emission order.
	Events []align.Event `json:"events"`
}

// recitation is the per-session state. Its mutex serializes chunk ingestion
// so cursor updates never interleave.
type recitation struct {
	mu         sync.Mutex
	info       Info
	reference  []string
	refText    string
	cursor     int
	events     []align.Event
	transcript strings.Builder
}

// Manager runs multiple concurrent recitation sessions, each with its own
// cursor and accumulated transcript. All exported methods are safe for
// concurrent use.
type Manager struct {
	provider   quran.Provider
	aligner    *align.Aligner
	comparator *align.Comparator
	advisor    advice.Advisor
	store      store.Store
	metrics    *observe.Metrics

	seq uint64

	mu       sync.Mutex
	sessions map[string]*recitation
}

// ManagerConfig holds all dependencies for a [Manager].
type ManagerConfig struct {
	// Provider supplies reference texts. Must not be nil.
	Provider quran.Provider

	// Aligner performs incremental chunk alignment. Defaults to
	// align.NewAligner() when nil.
	Aligner *align.Aligner

	// Comparator produces the terminal report. Defaults to
	// align.NewComparator() when nil.
	Comparator *align.Comparator

	// Advisor generates improvement suggestions. Optional; when nil the
	// final record carries no suggestions.
	Advisor advice.Advisor

	// Store persists finished reports. Must not be nil.
	Store store.Store

	// Metrics records session instrumentation. Defaults to
	// observe.DefaultMetrics() when nil.
	Metrics *observe.Metrics
}

// NewManager creates a Manager with the given dependencies.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Aligner == nil {
		cfg.Aligner = align.NewAligner()
	}
	if cfg.Comparator == nil {
		cfg.Comparator = align.NewComparator()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Manager{
		provider:   cfg.Provider,
		aligner:    cfg.Aligner,
		comparator: cfg.Comparator,
		advisor:    cfg.Advisor,
		store:      cfg.Store,
		metrics:    cfg.Metrics,
		sessions:   make(map[string]*recitation),
	}
}

// Start begins a new recitation session against the given surah. It fetches
// and tokenizes the reference text and registers the session under a freshly
// generated ID.
func (m *Manager) Start(ctx context.Context, surahNumber int) (Info, error) {
	fetchStart := time.Now()
	surah, err := m.provider.Surah(ctx, surahNumber)
	m.metrics.QuranFetchDuration.Record(ctx, time.Since(fetchStart).Seconds())
	if err != nil {
		return Info{}, fmt.Errorf("session: fetch surah %d: %w", surahNumber, err)
	}

	refText := surah.Text()
	reference := arabic.Tokenize(refText)
	if len(reference) == 0 {
		return Info{}, fmt.Errorf("session: surah %d normalizes to no words", surahNumber)
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("session-%s-%s-%d",
		sanitizeName(surah.EnglishName),
		now.Format("20060102T150405Z"),
		atomic.AddUint64(&m.seq, 1),
	)

	info := Info{
		ID:          id,
		SurahNumber: surah.Number,
		SurahName:   surah.Name,
		TotalWords:  len(reference),
		StartedAt:   now,
	}

	m.mu.Lock()
	m.sessions[id] = &recitation{
		info:      info,
		reference: reference,
		refText:   refText,
	}
	m.mu.Unlock()

	m.metrics.ActiveSessions.Add(ctx, 1)
	slog.Info("session started",
		"session_id", id,
		"surah", surah.Number,
		"surah_name", surah.EnglishName,
		"total_words", len(reference),
	)

	return info, nil
}

// Push feeds one finalized transcript chunk into the session. It returns the
// error events the chunk produced and the new cursor position.
func (m *Manager) Push(ctx context.Context, sessionID, chunk string) ([]align.Event, int, error) {
	rec, err := m.lookup(sessionID)
	if err != nil {
		return nil, 0, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	start := time.Now()
	events, cursor, err := m.aligner.Advance(chunk, rec.cursor, rec.reference)
	m.metrics.AdvanceDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return nil, rec.cursor, fmt.Errorf("session %q: %w", sessionID, err)
	}

	rec.cursor = cursor
	rec.events = append(rec.events, events...)
	if rec.transcript.Len() > 0 {
		rec.transcript.WriteByte(' ')
	}
	rec.transcript.WriteString(chunk)

	m.metrics.ChunksProcessed.Add(ctx, 1)
	for _, ev := range events {
		m.metrics.RecordErrorEvents(ctx, string(ev.Kind), 1)
	}

	slog.Debug("chunk aligned",
		"session_id", sessionID,
		"cursor", cursor,
		"events", len(events),
	)

	return events, cursor, nil
}

// Progress returns a snapshot of the session's current state.
func (m *Manager) Progress(sessionID string) (Progress, error) {
	rec, err := m.lookup(sessionID)
	if err != nil {
		return Progress{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	events := make([]align.Event, len(rec.events))
	copy(events, rec.events)

	return Progress{Info: rec.info, Cursor: rec.cursor, Events: events}, nil
}

// Reset rewinds the session to its start: cursor to zero, accumulated events
// and transcript discarded. The reference text is kept.
func (m *Manager) Reset(sessionID string) error {
	rec, err := m.lookup(sessionID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.cursor = 0
	rec.events = nil
	rec.transcript.Reset()

	slog.Info("session reset", "session_id", sessionID)
	return nil
}

// Finish ends the session: it runs the exhaustive comparison over the full
// accumulated transcript, asks the advisor for suggestions, persists the
// record, and removes the session from the registry.
//
// Advisor failures are logged and leave the record without suggestions; they
// never fail the finish. Store failures do fail it, but the session is gone
// from the registry either way.
func (m *Manager) Finish(ctx context.Context, sessionID string) (*store.Record, error) {
	m.mu.Lock()
	rec, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}

	m.metrics.ActiveSessions.Add(ctx, -1)

	rec.mu.Lock()
	transcript := rec.transcript.String()
	info := rec.info
	refText := rec.refText
	rec.mu.Unlock()

	compareStart := time.Now()
	report := m.comparator.Report(transcript, refText)
	m.metrics.CompareDuration.Record(ctx, time.Since(compareStart).Seconds())

	record := &store.Record{
		ID:          sessionID,
		SurahNumber: info.SurahNumber,
		SurahName:   info.SurahName,
		Report:      report,
	}

	if m.advisor != nil {
		adviceStart := time.Now()
		suggestions, err := m.advisor.Suggest(ctx, report)
		m.metrics.AdvisorDuration.Record(ctx, time.Since(adviceStart).Seconds())
		if err != nil {
			m.metrics.RecordAdvisorRequest(ctx, "chain", "error")
			slog.Warn("session: advisor failed, finishing without suggestions",
				"session_id", sessionID, "err", err)
		} else {
			m.metrics.RecordAdvisorRequest(ctx, "chain", "ok")
			record.Suggestions = suggestions
		}
	}

	if err := m.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("session %q: persist report: %w", sessionID, err)
	}

	slog.Info("session finished",
		"session_id", sessionID,
		"accuracy", report.Accuracy,
		"completion", report.Completion,
		"errors", report.TotalErrors(),
	)

	return record, nil
}

// Active lists the currently running sessions, in no particular order.
func (m *Manager) Active() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]Info, 0, len(m.sessions))
	for _, rec := range m.sessions {
		infos = append(infos, rec.info)
	}
	return infos
}

// lookup finds an active session by ID.
func (m *Manager) lookup(sessionID string) (*recitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	return rec, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "surah"
	}
	return name
}
