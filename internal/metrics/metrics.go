package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wordclash/internal/models"
)

// Metrics holds the collectors of one server. Each instance has its own
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	gamesStarted    *prometheus.CounterVec
	gamesFinished   *prometheus.CounterVec
	activeGames     prometheus.Gauge
	questions       *prometheus.CounterVec
	persistFailures prometheus.Counter
	gameDuration    *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordclash_games_started_total",
				Help: "Games started, by round mode and whether they replay a session",
			},
			[]string{"mode", "replay"},
		),
		gamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordclash_games_finished_total",
				Help: "Games finished, by round mode and end reason",
			},
			[]string{"mode", "reason"},
		),
		activeGames: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordclash_active_games",
				Help: "Games currently held in memory",
			},
		),
		questions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordclash_questions_total",
				Help: "Logged questions of finished games, by outcome",
			},
			[]string{"outcome"},
		),
		persistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordclash_persist_failures_total",
				Help: "Session logs that could not be written to history",
			},
		),
		gameDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordclash_game_duration_seconds",
				Help:    "Elapsed time of finished games",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
			},
			[]string{"mode"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),
	}

	m.registry.MustRegister(
		m.gamesStarted,
		m.gamesFinished,
		m.activeGames,
		m.questions,
		m.persistFailures,
		m.gameDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GameStarted counts a new game
func (m *Metrics) GameStarted(cfg models.GameConfig) {
	m.gamesStarted.WithLabelValues(string(cfg.Mode), strconv.FormatBool(cfg.IsReplay)).Inc()
	m.activeGames.Inc()
}

// GameFinished records the outcome of a finished game
func (m *Metrics) GameFinished(log models.SessionLog, persistErr error) {
	m.gamesFinished.WithLabelValues(string(log.Config.Mode), string(log.EndReason)).Inc()
	m.gameDuration.WithLabelValues(string(log.Config.Mode)).Observe(float64(log.ElapsedSeconds))
	for _, q := range log.Questions {
		switch {
		case q.SelectedOptionID == nil:
			m.questions.WithLabelValues("abandoned").Inc()
		case q.IsCorrect:
			m.questions.WithLabelValues("correct").Inc()
		default:
			m.questions.WithLabelValues("tainted").Inc()
		}
	}
	if persistErr != nil {
		m.persistFailures.Inc()
	}
}

// GameRemoved is called when a game leaves the in-memory registry
func (m *Metrics) GameRemoved() {
	m.activeGames.Dec()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
