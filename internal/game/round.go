package game

import (
	"time"

	"wordclash/internal/models"
)

// host is the part of a Session a round engine may touch. All methods are
// called with the session lock held.
type host interface {
	now() time.Time
	// schedule delivers kind after the delay configured for it
	schedule(kind eventKind)
	addScore()
	addMistake()
	correctAnswer()
	record(q models.QuestionLog)
}

// round is one of the two round engines. begin discards all state of the
// previous batch.
type round interface {
	begin(gen int, batch []models.Word, offset int)
	act(a Action) error
	clearFeedback()
	phase() Phase
	view(s *Snapshot)
	unresolved() []models.QuestionLog
}

// pickDistractors draws up to n words from dictionary that cannot be
// confused with the batch: neither the same word nor the same answer text.
func pickDistractors(batch, dictionary []models.Word, n int, shuffle ShuffleFunc) []models.Word {
	if n <= 0 {
		return nil
	}

	excludedIDs := make(map[int64]bool, len(batch))
	excludedAnswers := make(map[string]bool, len(batch))
	for _, w := range batch {
		excludedIDs[w.ID] = true
		excludedAnswers[w.AnswerKey()] = true
	}

	candidates := append([]models.Word(nil), dictionary...)
	shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]models.Word, 0, n)
	for _, w := range candidates {
		if len(out) == n {
			break
		}
		key := w.AnswerKey()
		if excludedIDs[w.ID] || excludedAnswers[key] {
			continue
		}
		excludedAnswers[key] = true
		out = append(out, w)
	}
	return out
}

func wordIDs(words []models.Word) []int64 {
	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}

func elapsedMs(from, to time.Time) int64 {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return to.Sub(from).Milliseconds()
}
