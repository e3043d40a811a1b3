package models

import (
	"testing"
	"time"
)

func TestWordKeys(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Word
		sameKey   bool
		sameReply bool
	}{
		{
			name:      "case and space differences",
			a:         Word{ID: 1, SourceText: "Hund", TargetText: "dog"},
			b:         Word{ID: 2, SourceText: " hund", TargetText: "Dog "},
			sameKey:   true,
			sameReply: true,
		},
		{
			name:      "same answer, other source",
			a:         Word{ID: 1, SourceText: "Bank", TargetText: "bench"},
			b:         Word{ID: 2, SourceText: "Sitzbank", TargetText: "bench"},
			sameKey:   false,
			sameReply: true,
		},
		{
			name:      "separator is not ambiguous",
			a:         Word{SourceText: "ab", TargetText: "c"},
			b:         Word{SourceText: "a", TargetText: "bc"},
			sameKey:   false,
			sameReply: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ContentKey() == tt.b.ContentKey(); got != tt.sameKey {
				t.Errorf("ContentKey() equal = %v, want %v", got, tt.sameKey)
			}
			if got := tt.a.AnswerKey() == tt.b.AnswerKey(); got != tt.sameReply {
				t.Errorf("AnswerKey() equal = %v, want %v", got, tt.sameReply)
			}
		})
	}
}

func TestWordSwapped(t *testing.T) {
	w := Word{ID: 7, SourceText: "Katze", TargetText: "cat"}
	got := w.Swapped()
	if got.ID != 7 || got.SourceText != "cat" || got.TargetText != "Katze" {
		t.Errorf("Swapped() = %+v, want cat/Katze with the same id", got)
	}
	if w.SourceText != "Katze" {
		t.Errorf("Swapped() changed the receiver")
	}
}

func TestGameConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   GameConfig
		want GameConfig
	}{
		{
			name: "empty config",
			in:   GameConfig{},
			want: DefaultGameConfig(),
		},
		{
			name: "no timer",
			in:   GameConfig{TimerMode: TimerNone},
			want: DefaultGameConfig(),
		},
		{
			name: "explicit values kept",
			in:   GameConfig{Mode: ModeMatching, TimerMode: TimerGlobal, TimeLimitSeconds: 90, BatchSize: 4},
			want: func() GameConfig {
				c := DefaultGameConfig()
				c.Mode = ModeMatching
				c.TimerMode = TimerGlobal
				c.TimeLimitSeconds = 90
				c.BatchSize = 4
				return c
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.WithDefaults()
			if got.Mode != tt.want.Mode || got.TimerMode != tt.want.TimerMode ||
				got.Direction != tt.want.Direction || got.BatchSize != tt.want.BatchSize ||
				got.OptionsCount != tt.want.OptionsCount || got.TotalQuestions != tt.want.TotalQuestions {
				t.Errorf("WithDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := (GameConfig{TimerMode: TimerPerQuestion}).WithDefaults().TimeLimit(); got != 30*time.Second {
		t.Errorf("TimeLimit() = %v, want %v", got, 30*time.Second)
	}
}

func TestSessionLogAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		questions []QuestionLog
		want      float64
	}{
		{name: "no questions", want: 0},
		{name: "all correct", questions: []QuestionLog{{IsCorrect: true}, {IsCorrect: true}}, want: 100},
		{name: "one of four", questions: []QuestionLog{{IsCorrect: true}, {}, {}, {}}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := SessionLog{Questions: tt.questions}
			if got := log.Accuracy(); got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionLogClone(t *testing.T) {
	selected := int64(3)
	done := time.Now()
	original := SessionLog{
		ID:          "s1",
		Config:      GameConfig{ThemeIDs: []int64{1}},
		Sequence:    []int64{1, 2},
		CompletedAt: &done,
		Questions: []QuestionLog{{
			WordID:           1,
			OptionIDs:        []int64{1, 2, 3},
			SelectedOptionID: &selected,
		}},
	}

	clone := original.Clone()
	clone.Config.ThemeIDs[0] = 99
	clone.Sequence[0] = 99
	clone.Questions[0].OptionIDs[0] = 99
	*clone.Questions[0].SelectedOptionID = 99
	*clone.CompletedAt = done.Add(time.Hour)

	if original.Config.ThemeIDs[0] != 1 || original.Sequence[0] != 1 {
		t.Errorf("Clone() shares config or sequence with the original")
	}
	if original.Questions[0].OptionIDs[0] != 1 || *original.Questions[0].SelectedOptionID != 3 {
		t.Errorf("Clone() shares question data with the original")
	}
	if !original.CompletedAt.Equal(done) {
		t.Errorf("Clone() shares CompletedAt with the original")
	}
}
