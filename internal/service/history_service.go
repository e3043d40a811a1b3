package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/models"
	"wordclash/internal/repository"
)

// HistoryService reads and maintains the stored session logs
type HistoryService struct {
	repo  *repository.HistoryRepository
	limit int
}

// NewHistoryService creates a history service keeping at most limit sessions
func NewHistoryService(repo *repository.HistoryRepository, limit int) *HistoryService {
	return &HistoryService{repo: repo, limit: limit}
}

// List returns the newest sessions first
func (s *HistoryService) List(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 || (s.limit > 0 && limit > s.limit) {
		limit = s.limit
	}
	return s.repo.ListSessions(ctx, limit)
}

// Get returns one session with its question logs
func (s *HistoryService) Get(ctx context.Context, id string) (*models.SessionLog, error) {
	return s.repo.GetSession(ctx, id)
}

// Delete removes one session
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// Stats aggregates the whole history
func (s *HistoryService) Stats(ctx context.Context) (*models.HistoryStats, error) {
	return s.repo.Stats(ctx)
}

// Prune drops the sessions beyond the configured limit
func (s *HistoryService) Prune(ctx context.Context) error {
	if s.limit <= 0 {
		return nil
	}
	n, err := s.repo.PruneSessions(ctx, s.limit)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithFields(log.Fields{"removed": n, "kept": s.limit}).Info("Pruned session history")
	}
	return nil
}
