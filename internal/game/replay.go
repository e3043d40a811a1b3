package game

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/models"
)

// Placeholder stands in for a word that no longer exists so that a replayed
// sequence keeps its length and order
func Placeholder(id int64) models.Word {
	text := fmt.Sprintf("<missing word #%d>", id)
	return models.Word{ID: id, SourceText: text, TargetText: text}
}

// LoadReplay rebuilds the configuration and frozen question sequence of a
// stored session. Words deleted since are replaced by placeholders.
func LoadReplay(ctx context.Context, store HistoryStore, source WordSource, sessionID string) (models.GameConfig, *Pool, error) {
	stored, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return models.GameConfig{}, nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	ids := sequenceIDs(stored)
	if len(ids) == 0 {
		return models.GameConfig{}, nil, ErrEmptyPool
	}

	cfg := stored.Config.WithDefaults()
	cfg.IsReplay = true
	cfg.ReplayOf = stored.ID
	cfg.TotalQuestions = len(ids)

	dictionary, err := source.FullDictionaryFor(ctx, cfg.ThemeIDs)
	if err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("Replay dictionary unavailable, using placeholders")
		dictionary = nil
	}

	byID := make(map[int64]models.Word, len(dictionary))
	for _, w := range dictionary {
		byID[w.ID] = w
	}

	sequence := make([]models.Word, len(ids))
	distinct := make(map[int64]bool, len(ids))
	missing := 0
	for i, id := range ids {
		distinct[id] = true
		if w, ok := byID[id]; ok {
			sequence[i] = w
			continue
		}
		sequence[i] = Placeholder(id)
		missing++
	}
	if missing > 0 {
		log.WithFields(log.Fields{
			"session_id": sessionID,
			"missing":    missing,
		}).Warn("Replay words no longer exist, substituted placeholders")
	}

	dictionary = Deduplicate(dictionary)
	if cfg.Direction == models.DirectionSwapped {
		sequence = SwapAll(sequence)
		dictionary = SwapAll(dictionary)
	}

	return cfg, &Pool{Sequence: sequence, Dictionary: dictionary, Size: len(distinct)}, nil
}

// sequenceIDs prefers the stored sequence and falls back to the question
// logs ordered by position for logs written without one
func sequenceIDs(stored *models.SessionLog) []int64 {
	if len(stored.Sequence) > 0 {
		return append([]int64(nil), stored.Sequence...)
	}
	questions := append([]models.QuestionLog(nil), stored.Questions...)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.WordID
	}
	return ids
}
