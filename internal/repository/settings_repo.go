package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"wordclash/internal/database"
	"wordclash/internal/models"
)

const lastGameConfigKey = "last_game_config"

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by name
func (r *SettingsRepository) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, name, value string) error {
	if _, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertSettings(), name, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}

// GetGameConfig returns the last configuration a game was started with,
// or the defaults when none was saved yet
func (r *SettingsRepository) GetGameConfig(ctx context.Context) (models.GameConfig, error) {
	value, err := r.GetSetting(ctx, lastGameConfigKey)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultGameConfig(), nil
	}
	if err != nil {
		return models.GameConfig{}, err
	}

	var cfg models.GameConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return models.DefaultGameConfig(), nil
	}
	return cfg.WithDefaults(), nil
}

// SaveGameConfig remembers cfg as the default for the next game
func (r *SettingsRepository) SaveGameConfig(ctx context.Context, cfg models.GameConfig) error {
	cfg.IsReplay = false
	cfg.ReplayOf = ""
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode game config: %w", err)
	}
	return r.SetSetting(ctx, lastGameConfigKey, string(data))
}
