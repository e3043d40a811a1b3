package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartupStatus(t *testing.T) {
	status := NewStartupStatus(StepDatabase, StepMigrations)
	gated := status.Gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	probe := func() (int, startupView) {
		rec := httptest.NewRecorder()
		status.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		var view startupView
		if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
			t.Fatalf("failed to decode readiness: %v", err)
		}
		return rec.Code, view
	}

	status.CompleteStep(StepDatabase)
	code, view := probe()
	if code != http.StatusServiceUnavailable || view.Progress != 50 {
		t.Errorf("probe() = %d progress %d, want 503 progress 50", code, view.Progress)
	}

	rec := httptest.NewRecorder()
	gated.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/themes", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("gated status before ready = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	status.CompleteStep(StepMigrations)
	status.MarkReady()
	code, view = probe()
	if code != http.StatusOK || !view.Ready || view.Progress != 100 {
		t.Errorf("probe() = %d %+v, want ready", code, view)
	}

	rec = httptest.NewRecorder()
	gated.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/themes", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("gated status after ready = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
