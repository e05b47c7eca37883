package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type fakeStats map[string]int

func (f fakeStats) Stats() map[string]int { return f }

func newTestServer() *Server {
	return NewServer(fakeStats{"sessions": 2, "connections": 5, "students": 4}, zerolog.Nop())
}

func TestRoot_PlaintextBody(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != rootBody {
		t.Errorf("unexpected body %q", body)
	}
}

func TestRoot_UnknownPathIs404(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHealth_ReportsStats(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status    string         `json:"status"`
		Stats     map[string]int `json:"stats"`
		Timestamp int64          `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("unexpected status %q", body.Status)
	}
	if body.Stats["sessions"] != 2 || body.Stats["students"] != 4 {
		t.Errorf("stats not passed through: %+v", body.Stats)
	}
	if body.Timestamp == 0 {
		t.Errorf("timestamp missing")
	}
}
