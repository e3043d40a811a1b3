package handlers

import (
	"net/http"

	"wordclash/internal/metrics"
	"wordclash/internal/security"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Games    *GameHandler
	Themes   *ThemeHandler
	History  *HistoryHandler
	Settings *SettingsHandler
	Metrics  *metrics.Metrics
	// Limiter throttles game starts and imports, nil disables it
	Limiter *security.RateLimiter
	// Startup holds back API requests until initialization finished, nil disables it
	Startup *StartupStatus
}

// NewRouter registers the API routes and wraps them in logging and recovery
func NewRouter(h Handlers) http.Handler {
	limit := func(next http.HandlerFunc) http.HandlerFunc {
		if h.Limiter == nil {
			return next
		}
		return h.Limiter.Limit(next)
	}

	mux := http.NewServeMux()
	api := http.NewServeMux()

	// Games
	api.HandleFunc("POST /api/games", limit(h.Games.Start))
	api.HandleFunc("GET /api/games/{gameId}", h.Games.Get)
	api.HandleFunc("POST /api/games/{gameId}/actions", h.Games.Act)
	api.HandleFunc("POST /api/games/{gameId}/exit", h.Games.Exit)
	api.HandleFunc("GET /api/games/{gameId}/stream", h.Games.Stream)

	// Themes
	api.HandleFunc("GET /api/themes", h.Themes.List)
	api.HandleFunc("POST /api/themes", h.Themes.Create)
	api.HandleFunc("POST /api/themes/import", limit(h.Themes.Import))
	api.HandleFunc("GET /api/themes/{id}", h.Themes.Get)
	api.HandleFunc("PUT /api/themes/{id}", h.Themes.Rename)
	api.HandleFunc("DELETE /api/themes/{id}", h.Themes.Delete)
	api.HandleFunc("POST /api/themes/{id}/words", h.Themes.AddWords)
	api.HandleFunc("DELETE /api/themes/{id}/words/{wordId}", h.Themes.DeleteWord)

	// History
	api.HandleFunc("GET /api/history", h.History.List)
	api.HandleFunc("GET /api/history/stats", h.History.Stats)
	api.HandleFunc("GET /api/history/{id}", h.History.Get)
	api.HandleFunc("DELETE /api/history/{id}", h.History.Delete)
	api.HandleFunc("POST /api/history/{sessionId}/replay", limit(h.Games.Replay))

	// Settings
	api.HandleFunc("GET /api/settings/game", h.Settings.GetGameConfig)
	api.HandleFunc("PUT /api/settings/game", h.Settings.SaveGameConfig)

	var apiHandler http.Handler = api
	if h.Startup != nil {
		apiHandler = h.Startup.Gate(api)
		mux.Handle("GET /readyz", h.Startup)
	}
	mux.Handle("/api/", apiHandler)

	// Operations
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics.Handler())
	}

	return Recover(Logging(h.Metrics, mux))
}
