package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/quran"
	"github.com/mkhalidi/rattil/internal/session"
	"github.com/mkhalidi/rattil/internal/store"
)

// maxBodyBytes bounds request bodies. Transcript chunks are short utterances;
// anything larger is a client bug.
const maxBodyBytes = 64 << 10

// startSessionRequest is the body of POST /sessions.
type startSessionRequest struct {
	SurahNumber int `json:"surah_number"`
}

// chunkRequest is the body of POST /sessions/{id}/chunks and of each inbound
// WebSocket frame on the live stream.
type chunkRequest struct {
	Text string `json:"text"`
}

// chunkResponse reports the outcome of one aligned chunk.
type chunkResponse struct {
	Cursor int           `json:"cursor"`
	Events []align.Event `json:"events"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	info, err := s.manager.Start(r.Context(), req.SurahNumber)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	infos := s.manager.Active()
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSessionProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.manager.Progress(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handlePushChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	events, cursor, err := s.manager.Push(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if events == nil {
		events = []align.Event{}
	}
	writeJSON(w, http.StatusOK, chunkResponse{Cursor: cursor, Events: events})
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Reset(r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	record, err := s.manager.Finish(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, errors.New("report not found: "+id))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, quran.ErrSurahNotFound):
		return http.StatusNotFound
	case errors.Is(err, align.ErrCursorOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. On failure it writes a 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server: encode response", "err", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
