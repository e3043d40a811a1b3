package game

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/models"
)

// Options tune the pacing of a session
type Options struct {
	Clock          Clock
	TickInterval   time.Duration
	FeedbackDelay  time.Duration
	AdvanceDelay   time.Duration
	PersistTimeout time.Duration
	Timer          TimerSettings
	Shuffle        ShuffleFunc
	// OnFinish runs once with the frozen log and the persistence error, if
	// any. It runs after the save, outside the session lock.
	OnFinish func(log models.SessionLog, persistErr error)
}

// DefaultOptions returns the pacing used by the browser UI
func DefaultOptions() Options {
	return Options{
		Clock:          RealClock{},
		TickInterval:   100 * time.Millisecond,
		FeedbackDelay:  400 * time.Millisecond,
		AdvanceDelay:   600 * time.Millisecond,
		// Bounds the history write. The game itself is unlocked while it runs.
		PersistTimeout: 5 * time.Second,
		Timer:          TimerSettings{Step: time.Second, Min: 3 * time.Second},
	}
}

// Session runs one game: it feeds batches of the question sequence to a
// round engine, drives the timer and writes the log when the game ends.
// All transitions are serialized by one mutex, including the scheduled
// ones coming from the clock.
type Session struct {
	mu       sync.Mutex
	cfg      models.GameConfig
	pool     *Pool
	opts     Options
	recorder *Recorder
	timer    *Timer
	engine   round

	logID        string
	batch        int
	gen          int
	score        int
	mistakes     int
	startedAt    time.Time
	endedAt      time.Time
	lastActivity time.Time

	stopTick func()
	pending  []func() bool
	persist  func()

	subscribers map[int]chan Snapshot
	nextSub     int

	started        bool
	finished       bool
	endReason      models.EndReason
	persistWarning string
	final          *models.SessionLog
	done           chan struct{}
}

// NewSession prepares a session. Nothing runs until Start.
func NewSession(cfg models.GameConfig, pool *Pool, recorder *Recorder, opts Options) *Session {
	d := DefaultOptions()
	if opts.Clock == nil {
		opts.Clock = d.Clock
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = d.TickInterval
	}
	if opts.FeedbackDelay <= 0 {
		opts.FeedbackDelay = d.FeedbackDelay
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = d.AdvanceDelay
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = d.PersistTimeout
	}
	if opts.Timer == (TimerSettings{}) {
		opts.Timer = d.Timer
	}
	if opts.Shuffle == nil {
		opts.Shuffle = defaultShuffle
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}

	s := &Session{
		cfg:         cfg,
		pool:        pool,
		opts:        opts,
		recorder:    recorder,
		subscribers: make(map[int]chan Snapshot),
		done:        make(chan struct{}),
	}
	s.timer = NewTimer(cfg.TimerMode, cfg.TimeLimit(), opts.Timer, s.onTimeUp)
	if cfg.Mode == models.ModeMatching {
		s.engine = newMatchingRound(s, cfg, pool.Dictionary, opts.Shuffle)
	} else {
		s.engine = newChoiceRound(s, cfg, pool.Dictionary, opts.Shuffle)
	}
	return s
}

// Start opens the session log, starts the timer and shows the first batch
func (s *Session) Start() Snapshot {
	s.mu.Lock()

	if s.started {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.started = true
	now := s.opts.Clock.Now()
	s.startedAt = now
	s.lastActivity = now

	created := s.recorder.CreateSession(s.cfg, s.pool.Size, s.pool.Sequence)
	s.logID = created.ID

	log.WithFields(log.Fields{
		"session_id": s.logID,
		"mode":       s.cfg.Mode,
		"timer":      s.cfg.TimerMode,
		"questions":  len(s.pool.Sequence),
		"replay":     s.cfg.IsReplay,
	}).Info("Game session started")

	if len(s.pool.Sequence) == 0 {
		s.finishLocked(models.EndCompleted)
		s.unlockAndPersist()
		return s.Snapshot()
	}

	defer s.mu.Unlock()
	s.timer.Start()
	if s.timer.Running() {
		s.stopTick = s.opts.Clock.Every(s.opts.TickInterval, s.onTick)
	}
	s.beginBatchLocked()
	s.publishLocked()
	return s.snapshotLocked()
}

// Do applies one player action and returns the resulting snapshot
func (s *Session) Do(a Action) (Snapshot, error) {
	s.mu.Lock()

	if s.finished {
		defer s.mu.Unlock()
		return s.snapshotLocked(), ErrGameFinished
	}
	s.lastActivity = s.opts.Clock.Now()
	err := s.engine.act(a)
	if err == nil {
		s.publishLocked()
	}
	snap := s.snapshotLocked()
	if s.unlockAndPersist() {
		snap = s.Snapshot()
	}
	return snap, err
}

// Exit ends the game early with whatever has been resolved so far. It is
// safe to call at any time, any number of times, and returns once the log
// has been saved.
func (s *Session) Exit() Snapshot {
	s.mu.Lock()
	s.finishLocked(models.EndExited)
	s.unlockAndPersist()
	<-s.done
	return s.Snapshot()
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving the latest snapshot after every
// transition. Slow readers only see the newest one. The channel is closed
// when the game ends or cancel is called.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed() {
		ch <- s.snapshotLocked()
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// Done is closed once the session is finished and its log saved
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastActivity returns the time of the last player action
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Finished reports whether the session has ended
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *Session) totalBatches() int {
	n := len(s.pool.Sequence)
	return (n + s.cfg.BatchSize - 1) / s.cfg.BatchSize
}

func (s *Session) beginBatchLocked() {
	s.cancelPendingLocked()
	s.gen++

	from := s.batch * s.cfg.BatchSize
	to := from + s.cfg.BatchSize
	if to > len(s.pool.Sequence) {
		to = len(s.pool.Sequence)
	}
	s.engine.begin(s.gen, s.pool.Sequence[from:to], from)
	s.timer.OnNewBatch()
}

func (s *Session) advanceLocked() {
	s.batch++
	if s.batch >= s.totalBatches() {
		s.finishLocked(models.EndCompleted)
		return
	}
	s.beginBatchLocked()
}

// finishLocked ends the session once. Later calls do nothing. The log is
// frozen here; saving it is left to unlockAndPersist so the write happens
// without the lock.
func (s *Session) finishLocked(reason models.EndReason) {
	if s.finished {
		return
	}
	s.finished = true
	s.endReason = reason
	s.endedAt = s.opts.Clock.Now()
	if !s.started {
		close(s.done)
		return
	}

	s.timer.Stop()
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
	s.cancelPendingLocked()

	if reason != models.EndCompleted && s.batch < s.totalBatches() {
		for _, q := range s.engine.unresolved() {
			s.record(q)
		}
	}

	final, _ := s.recorder.Freeze(s.score, s.mistakes, s.endedAt.Sub(s.startedAt), reason)
	s.final = &final
	score, mistakes := s.score, s.mistakes
	s.persist = func() { s.save(final, score, mistakes) }
}

// save writes the frozen log, then publishes the final snapshot and closes
// the subscriptions. It runs without the lock held.
func (s *Session) save(final models.SessionLog, score, mistakes int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PersistTimeout)
	defer cancel()
	err := s.recorder.Persist(ctx, final)

	entry := log.WithFields(log.Fields{
		"session_id": final.ID,
		"reason":     final.EndReason,
		"score":      score,
		"mistakes":   mistakes,
	})
	if err != nil {
		entry.WithError(err).Warn("Failed to persist session log")
	} else {
		entry.Info("Game session finished")
	}

	if s.opts.OnFinish != nil {
		s.opts.OnFinish(final, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.persistWarning = "The result could not be saved to history"
	}
	s.publishLocked()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	close(s.done)
}

// unlockAndPersist releases the lock and runs the save scheduled by
// finishLocked, if any. It reports whether a save ran.
func (s *Session) unlockAndPersist() bool {
	job := s.persist
	s.persist = nil
	s.mu.Unlock()
	if job == nil {
		return false
	}
	job()
	return true
}

// closed reports whether the session is finished and its log saved
func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) cancelPendingLocked() {
	for _, stop := range s.pending {
		stop()
	}
	s.pending = nil
}

// deliver runs a scheduled event. Events of a finished session or of an
// earlier batch are dropped.
func (s *Session) deliver(ev event) {
	s.mu.Lock()
	defer s.unlockAndPersist()

	if s.finished || ev.gen != s.gen {
		return
	}
	switch ev.kind {
	case evFeedbackDone:
		s.engine.clearFeedback()
	case evAdvance:
		if s.engine.phase() != PhaseAdvancing {
			return
		}
		s.advanceLocked()
	}
	s.publishLocked()
}

func (s *Session) onTick() {
	s.mu.Lock()
	defer s.unlockAndPersist()

	if s.finished {
		return
	}
	s.timer.Tick(s.opts.TickInterval)
	if !s.finished {
		s.publishLocked()
	}
}

// onTimeUp is called by the timer from inside onTick, with the lock held
func (s *Session) onTimeUp() {
	s.finishLocked(models.EndTimeout)
}

func (s *Session) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:      s.logID,
		Mode:           s.cfg.Mode,
		TimerMode:      s.cfg.TimerMode,
		Batch:          s.batch + 1,
		TotalBatches:   s.totalBatches(),
		Score:          s.score,
		Mistakes:       s.mistakes,
		TimeLeftMs:     s.timer.TimeLeft().Milliseconds(),
		TimeLimitMs:    s.timer.Limit().Milliseconds(),
		IsReplay:       s.cfg.IsReplay,
		Finished:       s.finished,
		EndReason:      s.endReason,
		PersistWarning: s.persistWarning,
	}
	if s.timer.Mode() == models.TimerNone {
		snap.TimeLeftMs, snap.TimeLimitMs = 0, 0
	}

	end := s.opts.Clock.Now()
	if s.finished {
		end = s.endedAt
	}
	snap.ElapsedMs = elapsedMs(s.startedAt, end)

	if s.finished {
		snap.Phase = PhaseFinished
		if snap.Batch > snap.TotalBatches {
			snap.Batch = snap.TotalBatches
		}
		if s.final != nil {
			final := s.final.Clone()
			snap.Log = &final
		}
		return snap
	}
	snap.Phase = s.engine.phase()
	s.engine.view(&snap)
	return snap
}

// host implementation used by the round engines

func (s *Session) now() time.Time {
	return s.opts.Clock.Now()
}

func (s *Session) schedule(kind eventKind) {
	d := s.opts.FeedbackDelay
	if kind == evAdvance {
		d = s.opts.AdvanceDelay
	}
	ev := event{kind: kind, gen: s.gen}
	stop := s.opts.Clock.AfterFunc(d, func() { s.deliver(ev) })
	s.pending = append(s.pending, stop)
}

func (s *Session) addScore() {
	s.score++
}

func (s *Session) addMistake() {
	s.mistakes++
}

func (s *Session) correctAnswer() {
	s.timer.OnCorrectAnswer()
}

func (s *Session) record(q models.QuestionLog) {
	if err := s.recorder.RecordQuestion(q); err != nil {
		log.WithError(err).WithField("session_id", s.logID).Warn("Dropped question log")
	}
}
