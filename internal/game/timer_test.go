package game

import (
	"testing"
	"time"

	"wordclash/internal/models"
)

func TestTimerAcceleration(t *testing.T) {
	settings := TimerSettings{Step: time.Second, Min: 3 * time.Second}
	initial := 10 * time.Second

	for k := 0; k <= 12; k++ {
		timer := NewTimer(models.TimerAcceleration, initial, settings, nil)
		timer.Start()
		for i := 0; i < k; i++ {
			timer.OnCorrectAnswer()
		}

		want := initial - time.Duration(k)*settings.Step
		if want < settings.Min {
			want = settings.Min
		}
		if got := timer.Limit(); got != want {
			t.Errorf("Limit() after %d correct = %v, want %v", k, got, want)
		}
		if got := timer.TimeLeft(); got != want {
			t.Errorf("TimeLeft() after %d correct = %v, want %v", k, got, want)
		}
	}
}

func TestTimerAccelerationBelowMinimum(t *testing.T) {
	settings := TimerSettings{Step: time.Second, Min: 3 * time.Second}

	tests := []struct {
		name    string
		initial time.Duration
	}{
		{"below minimum", 2 * time.Second},
		{"zero", 0},
		{"just under minimum", 3*time.Second - time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := NewTimer(models.TimerAcceleration, tt.initial, settings, nil)
			timer.Start()
			for k := 0; k <= 3; k++ {
				if got := timer.Limit(); got != settings.Min {
					t.Errorf("Limit() after %d correct = %v, want %v", k, got, settings.Min)
				}
				if got := timer.TimeLeft(); got != settings.Min {
					t.Errorf("TimeLeft() after %d correct = %v, want %v", k, got, settings.Min)
				}
				timer.OnCorrectAnswer()
			}
		})
	}
}

func TestTimerModes(t *testing.T) {
	settings := TimerSettings{Step: time.Second, Min: 3 * time.Second}

	tests := []struct {
		name          string
		mode          models.TimerMode
		wantRunning   bool
		wantLeftAfter time.Duration // after 4s elapsed and one correct answer
		wantLimit     time.Duration
	}{
		{"none never runs", models.TimerNone, false, 10 * time.Second, 10 * time.Second},
		{"global keeps counting", models.TimerGlobal, true, 6 * time.Second, 10 * time.Second},
		{"per-question resets", models.TimerPerQuestion, true, 10 * time.Second, 10 * time.Second},
		{"acceleration resets to lower limit", models.TimerAcceleration, true, 9 * time.Second, 9 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := NewTimer(tt.mode, 10*time.Second, settings, nil)
			timer.Start()
			if timer.Running() != tt.wantRunning {
				t.Fatalf("Running() = %v, want %v", timer.Running(), tt.wantRunning)
			}
			timer.Tick(4 * time.Second)
			timer.OnCorrectAnswer()
			if got := timer.TimeLeft(); got != tt.wantLeftAfter {
				t.Errorf("TimeLeft() = %v, want %v", got, tt.wantLeftAfter)
			}
			if got := timer.Limit(); got != tt.wantLimit {
				t.Errorf("Limit() = %v, want %v", got, tt.wantLimit)
			}
		})
	}
}

func TestTimerTimeUpFiresOnce(t *testing.T) {
	calls := 0
	timer := NewTimer(models.TimerGlobal, time.Second, TimerSettings{}, func() { calls++ })
	timer.Start()

	for i := 0; i < 15; i++ {
		timer.Tick(100 * time.Millisecond)
	}

	if calls != 1 {
		t.Errorf("onTimeUp calls = %d, want 1", calls)
	}
	if timer.TimeLeft() != 0 {
		t.Errorf("TimeLeft() = %v, want 0", timer.TimeLeft())
	}
	if timer.Running() {
		t.Error("Running() = true after time up, want false")
	}

	timer.Stop()
	timer.Stop()
	timer.Tick(time.Second)
	if calls != 1 {
		t.Errorf("onTimeUp calls after Stop = %d, want 1", calls)
	}
}

func TestTimerAccelerateOnlyInAccelerationMode(t *testing.T) {
	timer := NewTimer(models.TimerPerQuestion, 10*time.Second, TimerSettings{Step: time.Second, Min: time.Second}, nil)
	timer.Accelerate()
	if timer.Limit() != 10*time.Second {
		t.Errorf("Limit() = %v, want %v", timer.Limit(), 10*time.Second)
	}
}
