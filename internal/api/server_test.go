package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeSquared-Agency/digest/internal/progress"
)

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8760, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	tracker := progress.NewTracker("run-abc", 12)
	tracker.SetPhase(progress.PhaseSummarizing)
	tracker.SetRows(30)
	tracker.SetGroups(8, 5)

	srv := NewServer(8760, tracker.Current)

	req := httptest.NewRequest("GET", "/api/v1/digest/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body progress.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.RunID != "run-abc" {
		t.Errorf("expected run id run-abc, got %q", body.RunID)
	}
	if body.SnapshotID != 12 {
		t.Errorf("expected snapshot 12, got %d", body.SnapshotID)
	}
	if body.Phase != progress.PhaseSummarizing {
		t.Errorf("expected phase summarizing, got %q", body.Phase)
	}
	if body.Rows != 30 || body.Groups != 8 || body.Candidates != 5 {
		t.Errorf("unexpected counts: %+v", body)
	}
}

func TestStatusEndpoint_NoRun(t *testing.T) {
	srv := NewServer(8760, nil)

	req := httptest.NewRequest("GET", "/api/v1/digest/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(8760, nil)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
