package models

import "time"

// EndReason records why a session stopped
type EndReason string

const (
	EndCompleted EndReason = "completed"
	EndExited    EndReason = "exited"
	EndTimeout   EndReason = "timeout"
)

// QuestionLog is the outcome of one resolved (or abandoned) question.
// Option IDs are the word IDs behind the options that were on screen.
type QuestionLog struct {
	Position         int     `json:"position"`
	WordID           int64   `json:"wordId"`
	OptionIDs        []int64 `json:"optionIds"`
	CorrectOptionID  int64   `json:"correctOptionId"`
	SelectedOptionID *int64  `json:"selectedOptionId"`
	IsCorrect        bool    `json:"isCorrect"`
	Mistakes         int     `json:"mistakes"`
	TimeTakenMs      int64   `json:"timeTakenMs"`
}

// SessionLog is the persisted record of a played session
type SessionLog struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	Config         GameConfig    `json:"config"`
	Questions      []QuestionLog `json:"questions"`
	Sequence       []int64       `json:"sequence"`
	Score          int           `json:"score"`
	Mistakes       int           `json:"mistakes"`
	// TotalWords is the size of the played word subset
	TotalWords     int           `json:"totalWords"`
	ElapsedSeconds int           `json:"elapsedSeconds"`
	EndReason      EndReason     `json:"endReason"`
}

// Accuracy returns the share of logged questions answered correctly, in percent
func (s SessionLog) Accuracy() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range s.Questions {
		if q.IsCorrect {
			correct++
		}
	}
	return float64(correct) * 100 / float64(len(s.Questions))
}

// Clone returns a deep copy so callers cannot mutate a frozen log
func (s SessionLog) Clone() SessionLog {
	out := s
	out.Config.ThemeIDs = append([]int64(nil), s.Config.ThemeIDs...)
	out.Sequence = append([]int64(nil), s.Sequence...)
	out.Questions = make([]QuestionLog, len(s.Questions))
	for i, q := range s.Questions {
		q.OptionIDs = append([]int64(nil), q.OptionIDs...)
		if q.SelectedOptionID != nil {
			id := *q.SelectedOptionID
			q.SelectedOptionID = &id
		}
		out.Questions[i] = q
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// HistoryStats aggregates all stored sessions
type HistoryStats struct {
	Sessions       int     `json:"sessions"`
	TotalScore     int     `json:"totalScore"`
	TotalMistakes  int     `json:"totalMistakes"`
	TotalQuestions int     `json:"totalQuestions"`
	Accuracy       float64 `json:"accuracy"`
	TotalSeconds   int     `json:"totalSeconds"`
}

// SessionSummary is a history row without its question logs
type SessionSummary struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Config         GameConfig `json:"config"`
	Score          int        `json:"score"`
	Mistakes       int        `json:"mistakes"`
	TotalWords     int        `json:"totalWords"`
	ElapsedSeconds int        `json:"elapsedSeconds"`
	EndReason      EndReason  `json:"endReason"`
	Questions      int        `json:"questions"`
	Correct        int        `json:"correct"`
}
