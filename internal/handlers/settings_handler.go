package handlers

import (
	"net/http"

	"wordclash/internal/models"
	"wordclash/internal/repository"
	"wordclash/internal/validation"
)

// SettingsHandler serves the remembered game configuration
type SettingsHandler struct {
	settings *repository.SettingsRepository
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetGameConfig returns the last used configuration or the defaults
func (h *SettingsHandler) GetGameConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.GetGameConfig(r.Context())
	if err != nil {
		respondWithServiceError(w, "Failed to load settings", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// SaveGameConfig stores the configuration offered for the next game
func (h *SettingsHandler) SaveGameConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.GameConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid game configuration", "decode game config", err)
		return
	}
	cfg = cfg.WithDefaults()
	cfg.IsReplay = false
	cfg.ReplayOf = ""
	if err := validation.ValidateGameConfig(cfg); err != nil {
		respondWithServiceError(w, "Invalid game configuration", err)
		return
	}
	if err := h.settings.SaveGameConfig(r.Context(), cfg); err != nil {
		respondWithServiceError(w, "Failed to save settings", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
