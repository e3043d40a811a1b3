package game

import "wordclash/internal/models"

// ItemState is the interaction state of one item on screen
type ItemState string

const (
	ItemDefault     ItemState = "default"
	ItemSelected    ItemState = "selected"
	ItemMatched     ItemState = "matched"
	ItemError       ItemState = "error"
	ItemSuccessHint ItemState = "success-hint"
)

// Phase is the state of the current round
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseQuestionSelected Phase = "question-selected"
	PhaseFeedback         Phase = "feedback"
	PhaseAdvancing        Phase = "advancing"
	PhaseFinished         Phase = "finished"
)

// ItemView is an item as the UI renders it
type ItemView struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	State ItemState `json:"state"`
}

// Snapshot is everything the UI needs to draw the game without holding
// any game logic itself
type Snapshot struct {
	SessionID        string             `json:"sessionId"`
	Mode             models.RoundMode   `json:"mode"`
	TimerMode        models.TimerMode   `json:"timerMode"`
	Phase            Phase              `json:"phase"`
	Batch            int                `json:"batch"`
	TotalBatches     int                `json:"totalBatches"`
	Questions        []ItemView         `json:"questions"`
	Options          []ItemView         `json:"options"`
	SelectedQuestion string             `json:"selectedQuestion,omitempty"`
	SelectedOption   string             `json:"selectedOption,omitempty"`
	Score            int                `json:"score"`
	Mistakes         int                `json:"mistakes"`
	TimeLeftMs       int64              `json:"timeLeftMs"`
	TimeLimitMs      int64              `json:"timeLimitMs"`
	ElapsedMs        int64              `json:"elapsedMs"`
	IsReplay         bool               `json:"isReplay"`
	Finished         bool               `json:"finished"`
	EndReason        models.EndReason   `json:"endReason,omitempty"`
	PersistWarning   string             `json:"persistWarning,omitempty"`
	Log              *models.SessionLog `json:"log,omitempty"`
}
