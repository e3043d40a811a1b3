package game

import (
	"time"

	"wordclash/internal/models"
)

// TimerSettings holds the acceleration parameters
type TimerSettings struct {
	Step time.Duration
	Min  time.Duration
}

// Timer is the countdown of a session. It is not safe for concurrent use;
// the owning Session serializes calls.
type Timer struct {
	mode     models.TimerMode
	limit    time.Duration
	step     time.Duration
	min      time.Duration
	timeLeft time.Duration
	running  bool
	fired    bool
	onTimeUp func()
}

// NewTimer creates a stopped timer with the given base limit. In the
// acceleration mode a limit below the minimum starts at the minimum.
// onTimeUp is invoked at most once per Start.
func NewTimer(mode models.TimerMode, limit time.Duration, settings TimerSettings, onTimeUp func()) *Timer {
	if mode == "" {
		mode = models.TimerNone
	}
	if mode == models.TimerAcceleration && limit < settings.Min {
		limit = settings.Min
	}
	return &Timer{
		mode:     mode,
		limit:    limit,
		step:     settings.Step,
		min:      settings.Min,
		timeLeft: limit,
		onTimeUp: onTimeUp,
	}
}

// Start begins counting down from the current limit. It does nothing when
// the mode is none or the timer already runs.
func (t *Timer) Start() {
	if t.mode == models.TimerNone || t.running {
		return
	}
	t.timeLeft = t.limit
	t.running = true
	t.fired = false
}

// Reset snaps the remaining time back to the current limit
func (t *Timer) Reset() {
	if t.mode == models.TimerNone {
		return
	}
	t.timeLeft = t.limit
}

// Accelerate lowers the limit by one step, never below the minimum.
// Only the acceleration mode is affected.
func (t *Timer) Accelerate() {
	if t.mode != models.TimerAcceleration || t.limit <= t.min {
		return
	}
	t.limit -= t.step
	if t.limit < t.min {
		t.limit = t.min
	}
}

// Stop halts the countdown
func (t *Timer) Stop() {
	t.running = false
}

// Tick advances the countdown by elapsed. When the remaining time reaches
// zero the timer stops and calls onTimeUp.
func (t *Timer) Tick(elapsed time.Duration) {
	if !t.running || t.mode == models.TimerNone {
		return
	}
	t.timeLeft -= elapsed
	if t.timeLeft > 0 {
		return
	}
	t.timeLeft = 0
	t.running = false
	if !t.fired {
		t.fired = true
		if t.onTimeUp != nil {
			t.onTimeUp()
		}
	}
}

// OnCorrectAnswer applies the mode's reaction to a correct answer
func (t *Timer) OnCorrectAnswer() {
	switch t.mode {
	case models.TimerAcceleration:
		t.Accelerate()
		t.Reset()
	case models.TimerPerQuestion:
		t.Reset()
	}
}

// OnNewBatch resets the countdown for the modes that time each screen
func (t *Timer) OnNewBatch() {
	if t.mode == models.TimerPerQuestion || t.mode == models.TimerAcceleration {
		t.Reset()
	}
}

// Mode returns the timer mode
func (t *Timer) Mode() models.TimerMode { return t.mode }

// Limit returns the current ceiling of the countdown
func (t *Timer) Limit() time.Duration { return t.limit }

// TimeLeft returns the remaining time
func (t *Timer) TimeLeft() time.Duration { return t.timeLeft }

// Running reports whether the countdown is active
func (t *Timer) Running() bool { return t.running }
