package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"wordclash/internal/models"
)

// fakeClock only moves when Advance is called. Due callbacks run on the
// caller's goroutine in time order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	period  time.Duration
	f       func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) add(d, period time.Duration, f func()) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), period: period, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) func() bool {
	t := c.add(d, 0, f)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		was := !t.stopped
		t.stopped = true
		return was
	}
}

func (c *fakeClock) Every(d time.Duration, f func()) func() {
	t := c.add(d, d, f)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.stopped = true
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		if next.period > 0 {
			next.at = next.at.Add(next.period)
		} else {
			next.stopped = true
		}
		f := next.f
		c.mu.Unlock()
		f()
	}
}

// noShuffle keeps every slice in its original order
func noShuffle(int, func(i, j int)) {}

func word(id int64, source, target string) models.Word {
	return models.Word{ID: id, ThemeID: 1, SourceText: source, TargetText: target}
}

type memSource struct {
	words      []models.Word
	dictionary []models.Word
	err        error
}

func (m *memSource) ResolveThemesToWords(ctx context.Context, themeIDs []int64) ([]models.Word, error) {
	return m.words, m.err
}

func (m *memSource) FullDictionaryFor(ctx context.Context, themeIDs []int64) ([]models.Word, error) {
	if m.dictionary == nil {
		return m.words, m.err
	}
	return m.dictionary, m.err
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string]models.SessionLog
	saves    int
	err      error

	// when set, SaveSession signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]models.SessionLog)}
}

func (m *memStore) SaveSession(ctx context.Context, l *models.SessionLog) error {
	if m.release != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.sessions[l.ID]; ok {
		return nil
	}
	m.saves++
	m.sessions[l.ID] = l.Clone()
	return nil
}

func (m *memStore) GetSession(ctx context.Context, id string) (*models.SessionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	out := l.Clone()
	return &out, nil
}

func (m *memStore) only() (models.SessionLog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.sessions {
		return l, true
	}
	return models.SessionLog{}, false
}

// newTestSession builds a started session over sequence with the fake clock
func newTestSession(cfg models.GameConfig, sequence, dictionary []models.Word, store HistoryStore) (*Session, *fakeClock) {
	clock := newFakeClock()
	if dictionary == nil {
		dictionary = sequence
	}
	pool := &Pool{Sequence: sequence, Dictionary: Deduplicate(dictionary), Size: len(Deduplicate(sequence))}
	opts := Options{
		Clock:         clock,
		TickInterval:  100 * time.Millisecond,
		FeedbackDelay: 400 * time.Millisecond,
		AdvanceDelay:  600 * time.Millisecond,
		Timer:         TimerSettings{Step: time.Second, Min: 3 * time.Second},
		Shuffle:       noShuffle,
	}
	s := NewSession(cfg, pool, NewRecorder(store, clock.Now), opts)
	s.Start()
	return s, clock
}

func testConfig(mode models.RoundMode, batch, total int) models.GameConfig {
	cfg := models.DefaultGameConfig()
	cfg.ThemeIDs = []int64{1}
	cfg.Mode = mode
	cfg.BatchSize = batch
	cfg.OptionsCount = 4
	cfg.TotalQuestions = total
	return cfg
}
