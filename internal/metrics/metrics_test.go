package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"wordclash/internal/models"
)

func TestGameCounters(t *testing.T) {
	m := New()
	cfg := models.DefaultGameConfig()

	m.GameStarted(cfg)
	m.GameStarted(cfg)
	if got := testutil.ToFloat64(m.activeGames); got != 2 {
		t.Errorf("active games = %v, want 2", got)
	}

	selected := int64(1)
	m.GameFinished(models.SessionLog{
		Config:    cfg,
		EndReason: models.EndExited,
		Questions: []models.QuestionLog{
			{SelectedOptionID: &selected, IsCorrect: true},
			{SelectedOptionID: &selected},
			{},
		},
	}, errors.New("disk full"))
	m.GameRemoved()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"active", testutil.ToFloat64(m.activeGames), 1},
		{"finished exited", testutil.ToFloat64(m.gamesFinished.WithLabelValues("choice", "exited")), 1},
		{"correct", testutil.ToFloat64(m.questions.WithLabelValues("correct")), 1},
		{"tainted", testutil.ToFloat64(m.questions.WithLabelValues("tainted")), 1},
		{"abandoned", testutil.ToFloat64(m.questions.WithLabelValues("abandoned")), 1},
		{"persist failures", testutil.ToFloat64(m.persistFailures), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/games", "POST", 201, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `http_requests_total{method="POST",route="/api/games",status="201"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
