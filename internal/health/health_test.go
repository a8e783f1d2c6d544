package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz_AlwaysReturns200(t *testing.T) {
	h := New()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
}

func TestHealthz_ContentType(t *testing.T) {
	h := New()
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)

	ct := rec.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestReadyz_AllCheckersPass(t *testing.T) {
	h := New(
		Checker{Name: "store", Check: func(_ context.Context) error { return nil }},
		Checker{Name: "quran", Check: func(_ context.Context) error { return nil }},
	)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
	if body.Checks["store"] != "ok" {
		t.Errorf("store check = %q, want %q", body.Checks["store"], "ok")
	}
	if body.Checks["quran"] != "ok" {
		t.Errorf("quran check = %q, want %q", body.Checks["quran"], "ok")
	}
}

func TestReadyz_CheckerFails(t *testing.T) {
	h := New(
		Checker{Name: "store", Check: func(_ context.Context) error {
			return errors.New("connection refused")
		}},
		Checker{Name: "quran", Check: func(_ context.Context) error { return nil }},
	)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "fail" {
		t.Errorf("status = %q, want %q", body.Status, "fail")
	}
	if body.Checks["store"] != "fail: connection refused" {
		t.Errorf("store check = %q, want %q", body.Checks["store"], "fail: connection refused")
	}
	if body.Checks["quran"] != "ok" {
		t.Errorf("quran check = %q, want %q", body.Checks["quran"], "ok")
	}
}

func TestReadyz_NoCheckers(t *testing.T) {
	h := New()

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
}

// pinger is a Pinger returning a fixed error.
type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error { return p.err }

func TestPingChecker(t *testing.T) {
	h := New(
		PingChecker("store", pinger{}),
		PingChecker("broken", pinger{err: errors.New("no connection")}),
	)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if body.Checks["store"] != "ok" {
		t.Errorf("store check = %q, want %q", body.Checks["store"], "ok")
	}
	if body.Checks["broken"] != "fail: no connection" {
		t.Errorf("broken check = %q", body.Checks["broken"])
	}
}

func TestRegister_RoutesWork(t *testing.T) {
	h := New(
		Checker{Name: "test", Check: func(_ context.Context) error { return nil }},
	)

	mux := http.NewServeMux()
	h.Register(mux)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestReadyz_RespectsContextCancellation(t *testing.T) {
	h := New(
		Checker{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest("GET", "/readyz", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
