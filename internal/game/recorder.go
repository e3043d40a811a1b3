package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wordclash/internal/models"
)

// HistoryStore persists finished session logs. SaveSession must treat a
// second save of the same ID as a no-op.
type HistoryStore interface {
	SaveSession(ctx context.Context, log *models.SessionLog) error
	GetSession(ctx context.Context, id string) (*models.SessionLog, error)
}

type recorderState int

const (
	recording recorderState = iota
	finalized
)

// Recorder accumulates the log of one session and writes it exactly once
type Recorder struct {
	store HistoryStore
	now   func() time.Time
	log   models.SessionLog
	state recorderState
}

// NewRecorder creates a recorder writing to store
func NewRecorder(store HistoryStore, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{store: store, now: now}
}

// CreateSession starts a fresh log with a new ID, the current time and an
// empty question list
func (r *Recorder) CreateSession(cfg models.GameConfig, totalWords int, sequence []models.Word) models.SessionLog {
	r.log = models.SessionLog{
		ID:         uuid.NewString(),
		CreatedAt:  r.now(),
		Config:     cfg,
		Questions:  []models.QuestionLog{},
		Sequence:   wordIDs(sequence),
		TotalWords: totalWords,
	}
	r.state = recording
	return r.log.Clone()
}

// RecordQuestion appends one question outcome
func (r *Recorder) RecordQuestion(q models.QuestionLog) error {
	if r.state != recording {
		return ErrSessionFrozen
	}
	r.log.Questions = append(r.log.Questions, q)
	return nil
}

// Finalize freezes the log and persists it. Only the first call writes;
// later calls return the frozen log and no error. A store failure is
// returned alongside the log so the caller can still show it.
func (r *Recorder) Finalize(ctx context.Context, score, mistakes int, elapsed time.Duration, reason models.EndReason) (models.SessionLog, error) {
	frozen, first := r.Freeze(score, mistakes, elapsed, reason)
	if !first {
		return frozen, nil
	}
	return frozen, r.Persist(ctx, frozen)
}

// Freeze stamps the final totals and stops further recording. It reports
// whether this call did the freezing; later calls return the frozen log
// unchanged.
func (r *Recorder) Freeze(score, mistakes int, elapsed time.Duration, reason models.EndReason) (models.SessionLog, bool) {
	if r.state == finalized {
		return r.log.Clone(), false
	}
	r.state = finalized

	completedAt := r.now()
	r.log.Score = score
	r.log.Mistakes = mistakes
	r.log.ElapsedSeconds = int(elapsed.Round(time.Second) / time.Second)
	r.log.EndReason = reason
	r.log.CompletedAt = &completedAt
	return r.log.Clone(), true
}

// Persist writes a frozen log to the store. It only reads its argument, so
// it may run without the owner's lock.
func (r *Recorder) Persist(ctx context.Context, frozen models.SessionLog) error {
	if r.store == nil {
		return nil
	}
	return r.store.SaveSession(ctx, &frozen)
}

// Log returns a copy of the log as recorded so far
func (r *Recorder) Log() models.SessionLog {
	return r.log.Clone()
}

// Finalized reports whether the log has been frozen
func (r *Recorder) Finalized() bool {
	return r.state == finalized
}
