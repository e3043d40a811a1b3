// Package scheduler runs the periodic housekeeping jobs of the server.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
)

// GameReaper exits games nobody has played for a while
type GameReaper interface {
	ReapIdle(now time.Time) int
}

// HistoryPruner trims stored sessions to the configured limit
type HistoryPruner interface {
	Prune(ctx context.Context) error
}

// VisitorCleaner drops stale rate limiter entries
type VisitorCleaner interface {
	Cleanup() int
}

// Intervals of the housekeeping jobs
type Intervals struct {
	Reap    time.Duration
	Prune   time.Duration
	Cleanup time.Duration
}

// DefaultIntervals reaps every minute and prunes hourly
func DefaultIntervals() Intervals {
	return Intervals{
		Reap:    time.Minute,
		Prune:   time.Hour,
		Cleanup: time.Hour,
	}
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	games     GameReaper
	history   HistoryPruner
	limiters  []VisitorCleaner
	intervals Intervals
}

// New creates a new scheduler instance. Any job whose target is nil is not scheduled.
func New(games GameReaper, history HistoryPruner, intervals Intervals, limiters ...VisitorCleaner) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		games:     games,
		history:   history,
		limiters:  limiters,
		intervals: intervals,
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()

	if s.games != nil && s.intervals.Reap > 0 {
		if _, err := s.scheduler.Every(s.intervals.Reap).Do(s.reapIdleGames); err != nil {
			return err
		}
	}
	if s.history != nil && s.intervals.Prune > 0 {
		if _, err := s.scheduler.Every(s.intervals.Prune).Do(s.pruneHistory); err != nil {
			return err
		}
	}
	if len(s.limiters) > 0 && s.intervals.Cleanup > 0 {
		if _, err := s.scheduler.Every(s.intervals.Cleanup).WaitForSchedule().Do(s.cleanupVisitors); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	log.WithField("jobs", len(s.scheduler.Jobs())).Info("Scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) reapIdleGames() {
	if n := s.games.ReapIdle(time.Now()); n > 0 {
		log.WithField("games", n).Info("Reaped idle games")
	}
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.history.Prune(ctx); err != nil {
		log.WithError(err).Error("Failed to prune session history")
	}
}

func (s *Scheduler) cleanupVisitors() {
	removed := 0
	for _, l := range s.limiters {
		removed += l.Cleanup()
	}
	if removed > 0 {
		log.WithField("visitors", removed).Debug("Cleaned up rate limiter entries")
	}
}
