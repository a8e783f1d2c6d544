package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/session"
)

// liveReadLimit bounds a single inbound frame. Matches maxBodyBytes for the
// REST chunk endpoint.
const liveReadLimit = maxBodyBytes

// liveWriteTimeout bounds each outbound frame write.
const liveWriteTimeout = 10 * time.Second

// liveError is the outbound frame sent when a chunk cannot be aligned. The
// connection stays open for recoverable errors.
type liveError struct {
	Error string `json:"error"`
}

// handleLive upgrades GET /sessions/{id}/live to a WebSocket and streams
// alignment feedback: each inbound text frame carries one finalized
// transcript chunk as JSON ({"text": "..."}), and each is answered with a
// [chunkResponse] frame. The stream ends when the client closes, the session
// is finished elsewhere, or an unrecoverable error occurs.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	// Reject unknown sessions before upgrading.
	if _, err := s.manager.Progress(sessionID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("live: websocket accept failed", "session_id", sessionID, "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	conn.SetReadLimit(liveReadLimit)
	slog.Info("live stream opened", "session_id", sessionID)

	ctx := r.Context()
	for {
		var req chunkRequest
		if err := readFrame(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "")
			} else if !errors.Is(err, context.Canceled) {
				slog.Debug("live: read ended", "session_id", sessionID, "err", err)
			}
			return
		}

		events, cursor, err := s.manager.Push(ctx, sessionID, req.Text)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				conn.Close(websocket.StatusNormalClosure, "session finished")
				return
			}
			if writeFrame(ctx, conn, liveError{Error: err.Error()}) != nil {
				return
			}
			continue
		}

		if events == nil {
			events = []align.Event{}
		}
		if writeFrame(ctx, conn, chunkResponse{Cursor: cursor, Events: events}) != nil {
			return
		}
	}
}

// readFrame reads one JSON text frame into v.
func readFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.New("live: malformed frame: " + err.Error())
	}
	return nil
}

// writeFrame writes v as one JSON text frame with a bounded deadline.
func writeFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
