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

// HistoryRepository stores finished session logs
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SaveSession writes a session log and its questions in one transaction.
// Saving an ID that already exists changes nothing.
func (r *HistoryRepository) SaveSession(ctx context.Context, log *models.SessionLog) error {
	config, err := json.Marshal(log.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	sequence, err := json.Marshal(nonNilIDs(log.Sequence))
	if err != nil {
		return fmt.Errorf("failed to encode sequence: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := tx.GetDialect().InsertIgnore(`
			INSERT INTO session_logs
				(id, created_at, completed_at, config, sequence, score, mistakes, total_words, elapsed_seconds, end_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		var completedAt interface{}
		if log.CompletedAt != nil {
			completedAt = log.CompletedAt.UTC()
		}
		result, err := tx.ExecContext(ctx, query,
			log.ID, log.CreatedAt.UTC(), completedAt, string(config), string(sequence),
			log.Score, log.Mistakes, log.TotalWords, log.ElapsedSeconds, string(log.EndReason),
		)
		if err != nil {
			return fmt.Errorf("failed to insert session log: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			return nil
		}

		for _, q := range log.Questions {
			optionIDs, err := json.Marshal(nonNilIDs(q.OptionIDs))
			if err != nil {
				return fmt.Errorf("failed to encode option ids: %w", err)
			}
			var selected interface{}
			if q.SelectedOptionID != nil {
				selected = *q.SelectedOptionID
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO question_logs
					(session_id, position, word_id, option_ids, correct_option_id, selected_option_id, is_correct, mistakes, time_taken_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				log.ID, q.Position, q.WordID, string(optionIDs), q.CorrectOptionID, selected, q.IsCorrect, q.Mistakes, q.TimeTakenMs,
			)
			if err != nil {
				return fmt.Errorf("failed to insert question log: %w", err)
			}
		}
		return nil
	})
}

// GetSession loads one session log with its questions in position order
func (r *HistoryRepository) GetSession(ctx context.Context, id string) (*models.SessionLog, error) {
	var (
		log         models.SessionLog
		completedAt sql.NullTime
		config      string
		sequence    string
		endReason   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, completed_at, config, sequence, score, mistakes, total_words, elapsed_seconds, end_reason
		FROM session_logs
		WHERE id = ?`, id,
	).Scan(
		&log.ID,
		&log.CreatedAt,
		&completedAt,
		&config,
		&sequence,
		&log.Score,
		&log.Mistakes,
		&log.TotalWords,
		&log.ElapsedSeconds,
		&endReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		log.CompletedAt = &t
	}
	log.EndReason = models.EndReason(endReason)
	if err := json.Unmarshal([]byte(config), &log.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := json.Unmarshal([]byte(sequence), &log.Sequence); err != nil {
		return nil, fmt.Errorf("failed to decode sequence: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT position, word_id, option_ids, correct_option_id, selected_option_id, is_correct, mistakes, time_taken_ms
		FROM question_logs
		WHERE session_id = ?
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query question logs: %w", err)
	}
	defer rows.Close()

	log.Questions = []models.QuestionLog{}
	for rows.Next() {
		var q models.QuestionLog
		var optionIDs string
		var selected sql.NullInt64
		if err := rows.Scan(&q.Position, &q.WordID, &optionIDs, &q.CorrectOptionID, &selected, &q.IsCorrect, &q.Mistakes, &q.TimeTakenMs); err != nil {
			return nil, fmt.Errorf("failed to scan question log: %w", err)
		}
		if err := json.Unmarshal([]byte(optionIDs), &q.OptionIDs); err != nil {
			return nil, fmt.Errorf("failed to decode option ids: %w", err)
		}
		if selected.Valid {
			v := selected.Int64
			q.SelectedOptionID = &v
		}
		log.Questions = append(log.Questions, q)
	}
	return &log, rows.Err()
}

// ListSessions returns the newest sessions first. limit <= 0 returns all.
func (r *HistoryRepository) ListSessions(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	query := `
		SELECT s.id, s.created_at, s.completed_at, s.config, s.score, s.mistakes, s.total_words, s.elapsed_seconds, s.end_reason,
			(SELECT COUNT(*) FROM question_logs q WHERE q.session_id = s.id),
			(SELECT COUNT(*) FROM question_logs q WHERE q.session_id = s.id AND q.is_correct = ?)
		FROM session_logs s
		ORDER BY s.created_at DESC, s.id`
	args := []interface{}{true}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.SessionSummary{}
	for rows.Next() {
		var s models.SessionSummary
		var completedAt sql.NullTime
		var config, endReason string
		if err := rows.Scan(
			&s.ID,
			&s.CreatedAt,
			&completedAt,
			&config,
			&s.Score,
			&s.Mistakes,
			&s.TotalWords,
			&s.ElapsedSeconds,
			&endReason,
			&s.Questions,
			&s.Correct,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			s.CompletedAt = &t
		}
		s.EndReason = models.EndReason(endReason)
		if err := json.Unmarshal([]byte(config), &s.Config); err != nil {
			return nil, fmt.Errorf("failed to decode config of %s: %w", s.ID, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session log and its questions
func (r *HistoryRepository) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		return deleteSession(ctx, tx, id)
	})
}

func deleteSession(ctx context.Context, q database.DBTX, id string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM question_logs WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete question logs: %w", err)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM session_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectOneRow(result, "session "+id)
}

// PruneSessions keeps the newest keep sessions and deletes the rest
func (r *HistoryRepository) PruneSessions(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM session_logs ORDER BY created_at DESC, id`)
	if err != nil {
		return 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	var stale []string
	for i := 0; rows.Next(); i++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan session id: %w", err)
		}
		if i >= keep {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err = r.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, id := range stale {
			if err := deleteSession(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// Stats aggregates every stored session
func (r *HistoryRepository) Stats(ctx context.Context) (*models.HistoryStats, error) {
	stats := &models.HistoryStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0), COALESCE(SUM(mistakes), 0), COALESCE(SUM(elapsed_seconds), 0)
		FROM session_logs`,
	).Scan(&stats.Sessions, &stats.TotalScore, &stats.TotalMistakes, &stats.TotalSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sessions: %w", err)
	}

	var correct int
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct = ? THEN 1 ELSE 0 END), 0)
		FROM question_logs`, true,
	).Scan(&stats.TotalQuestions, &correct)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate questions: %w", err)
	}
	if stats.TotalQuestions > 0 {
		stats.Accuracy = float64(correct) * 100 / float64(stats.TotalQuestions)
	}
	return stats, nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
