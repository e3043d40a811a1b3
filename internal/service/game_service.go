package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	log "github.com/sirupsen/logrus"

	"wordclash/internal/game"
	"wordclash/internal/metrics"
	"wordclash/internal/models"
	"wordclash/internal/validation"
)

var ErrGameNotFound = errors.New("game not found")

// ConfigStore remembers the last configuration a game was started with
type ConfigStore interface {
	SaveGameConfig(ctx context.Context, cfg models.GameConfig) error
}

// GameService keeps the games in progress and routes actions to them.
// Finished games stay readable until the reaper removes them.
type GameService struct {
	mu    sync.RWMutex
	games map[string]*game.Session

	source      game.WordSource
	history     game.HistoryStore
	configs     ConfigStore
	metrics     *metrics.Metrics
	opts        game.Options
	idleTimeout time.Duration
}

// NewGameService creates a game service. configs and m may be nil.
func NewGameService(source game.WordSource, history game.HistoryStore, configs ConfigStore, m *metrics.Metrics, opts game.Options, idleTimeout time.Duration) *GameService {
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	return &GameService{
		games:       make(map[string]*game.Session),
		source:      source,
		history:     history,
		configs:     configs,
		metrics:     m,
		opts:        opts,
		idleTimeout: idleTimeout,
	}
}

// Start validates cfg, resolves its word pool and starts a new game
func (s *GameService) Start(ctx context.Context, cfg models.GameConfig) (string, game.Snapshot, error) {
	cfg = cfg.WithDefaults()
	cfg.IsReplay = false
	cfg.ReplayOf = ""
	if err := validation.ValidateGameConfig(cfg); err != nil {
		return "", game.Snapshot{}, fmt.Errorf("%w: %v", game.ErrInvalidConfig, err)
	}

	pool, err := game.NewResolver(s.source, s.opts.Shuffle).Resolve(ctx, cfg)
	if err != nil {
		return "", game.Snapshot{}, err
	}

	if s.configs != nil {
		if err := s.configs.SaveGameConfig(ctx, cfg); err != nil {
			log.WithError(err).Warn("Failed to remember game config")
		}
	}
	return s.launch(cfg, pool)
}

// Replay starts a game over the exact question sequence of a stored session
func (s *GameService) Replay(ctx context.Context, sessionID string) (string, game.Snapshot, error) {
	cfg, pool, err := game.LoadReplay(ctx, s.history, s.source, sessionID)
	if err != nil {
		return "", game.Snapshot{}, err
	}
	return s.launch(cfg, pool)
}

func (s *GameService) launch(cfg models.GameConfig, pool *game.Pool) (string, game.Snapshot, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", game.Snapshot{}, fmt.Errorf("failed to generate game id: %w", err)
	}

	opts := s.opts
	opts.OnFinish = func(l models.SessionLog, persistErr error) {
		if s.metrics != nil {
			s.metrics.GameFinished(l, persistErr)
		}
	}
	session := game.NewSession(cfg, pool, game.NewRecorder(s.history, opts.Clock.Now), opts)

	s.mu.Lock()
	s.games[id] = session
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.GameStarted(cfg)
	}

	snap := session.Start()
	log.WithFields(log.Fields{
		"game_id":    id,
		"session_id": snap.SessionID,
		"mode":       cfg.Mode,
	}).Info("Game started")
	return id, snap, nil
}

// Get returns a game by its public id
func (s *GameService) Get(id string) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return session, nil
}

// Snapshot returns the current state of a game
func (s *GameService) Snapshot(id string) (game.Snapshot, error) {
	session, err := s.Get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Act applies a player action to a game
func (s *GameService) Act(id string, action game.Action) (game.Snapshot, error) {
	session, err := s.Get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return session.Do(action)
}

// Exit ends a game early and returns its final state
func (s *GameService) Exit(id string) (game.Snapshot, error) {
	session, err := s.Get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return session.Exit(), nil
}

// Subscribe streams the snapshots of a game
func (s *GameService) Subscribe(id string) (<-chan game.Snapshot, func(), error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Active returns the number of games held in memory
func (s *GameService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// ReapIdle exits games nobody played for the idle timeout and drops them
// from memory. It returns the number of games removed.
func (s *GameService) ReapIdle(now time.Time) int {
	s.mu.Lock()
	var stale []string
	for id, session := range s.games {
		if now.Sub(session.LastActivity()) >= s.idleTimeout {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.remove(id, "idle")
	}
	return len(stale)
}

// Shutdown exits every running game so partial results are saved
func (s *GameService) Shutdown() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.remove(id, "shutdown")
	}
}

func (s *GameService) remove(id, why string) {
	s.mu.Lock()
	session, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	if !session.Finished() {
		snap := session.Exit()
		log.WithFields(log.Fields{
			"game_id":    id,
			"session_id": snap.SessionID,
			"reason":     why,
		}).Info("Exited abandoned game")
	}
	if s.metrics != nil {
		s.metrics.GameRemoved()
	}
}
