package models

import "time"

// RoundMode selects which round engine plays the quiz
type RoundMode string

const (
	ModeMatching RoundMode = "matching"
	ModeChoice   RoundMode = "choice"
)

// TimerMode selects how the countdown behaves
type TimerMode string

const (
	TimerNone         TimerMode = "none"
	TimerGlobal       TimerMode = "global"
	TimerPerQuestion  TimerMode = "per-question"
	TimerAcceleration TimerMode = "acceleration"
)

// Direction controls which column is asked and which is answered
type Direction string

const (
	DirectionNormal  Direction = "normal"
	DirectionSwapped Direction = "swapped"
)

// GameConfig describes one quiz run. It is stored with every session log
// so that the run can be replayed later.
type GameConfig struct {
	ThemeIDs         []int64   `json:"themeIds" validate:"required,min=1,dive,gt=0"`
	WordCount        int       `json:"wordCount" validate:"min=0"`
	Mode             RoundMode `json:"mode" validate:"required,oneof=matching choice"`
	TimerMode        TimerMode `json:"timerMode" validate:"required,oneof=none global per-question acceleration"`
	TimeLimitSeconds int       `json:"timeLimit" validate:"min=0"`
	Direction        Direction `json:"direction" validate:"required,oneof=normal swapped"`
	BatchSize        int       `json:"batchSize" validate:"min=1,max=5"`
	OptionsCount     int       `json:"optionsCount" validate:"min=4,max=20"`
	TotalQuestions   int       `json:"totalQuestions" validate:"min=1"`
	IsReplay         bool      `json:"isReplay"`
	ReplayOf         string    `json:"replayOf,omitempty"`
}

// DefaultGameConfig returns the configuration offered to a first-time player
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Mode:             ModeChoice,
		TimerMode:        TimerNone,
		TimeLimitSeconds: 30,
		Direction:        DirectionNormal,
		BatchSize:        1,
		OptionsCount:     6,
		TotalQuestions:   20,
	}
}

// WithDefaults fills zero-valued fields from DefaultGameConfig. Configurations
// saved before a field existed decode with its zero value.
func (c GameConfig) WithDefaults() GameConfig {
	d := DefaultGameConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.TimerMode == "" {
		c.TimerMode = d.TimerMode
	}
	if c.Direction == "" {
		c.Direction = d.Direction
	}
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.OptionsCount == 0 {
		c.OptionsCount = d.OptionsCount
	}
	if c.TotalQuestions == 0 {
		c.TotalQuestions = d.TotalQuestions
	}
	if c.TimeLimitSeconds == 0 && c.TimerMode != TimerNone {
		c.TimeLimitSeconds = d.TimeLimitSeconds
	}
	return c
}

// TimeLimit returns the base time limit as a duration
func (c GameConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}
