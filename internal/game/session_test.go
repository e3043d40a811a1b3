package game

import (
	"errors"
	"testing"
	"time"

	"wordclash/internal/models"
)

func TestSessionTimeout(t *testing.T) {
	cfg := testConfig(models.ModeChoice, 1, 3)
	cfg.TimerMode = models.TimerGlobal
	cfg.TimeLimitSeconds = 1
	store := newMemStore()
	s, clock := newTestSession(cfg, fiveWords()[:3], fiveWords(), store)

	s.Do(Action{Kind: ActionOption, ItemID: "r1-o0"})
	clock.Advance(900 * time.Millisecond)
	if s.Finished() {
		t.Fatal("Finished() = true before the limit, want false")
	}
	if got := s.Snapshot().TimeLeftMs; got != 100 {
		t.Errorf("TimeLeftMs = %d, want 100", got)
	}

	clock.Advance(time.Second)
	snap := s.Snapshot()
	if !snap.Finished || snap.EndReason != models.EndTimeout {
		t.Fatalf("finished=%v reason=%v, want true/%v", snap.Finished, snap.EndReason, models.EndTimeout)
	}
	if snap.TimeLeftMs != 0 {
		t.Errorf("TimeLeftMs = %d, want 0", snap.TimeLeftMs)
	}

	saved, _ := store.only()
	if saved.Score != 1 {
		t.Errorf("Score = %d, want 1", saved.Score)
	}
	// question 1 resolved, question 2 on screen and abandoned, question 3 never shown
	if len(saved.Questions) != 2 {
		t.Errorf("len(Questions) = %d, want 2", len(saved.Questions))
	}
	if saved.ElapsedSeconds != 1 {
		t.Errorf("ElapsedSeconds = %d, want 1", saved.ElapsedSeconds)
	}

	clock.Advance(5 * time.Second)
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestSessionPersistFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	s, clock := newTestSession(testConfig(models.ModeChoice, 1, 1), fiveWords()[:1], fiveWords(), store)

	var finished models.SessionLog
	var finishErr error
	s.opts.OnFinish = func(l models.SessionLog, err error) {
		finished, finishErr = l, err
	}

	s.Do(Action{Kind: ActionOption, ItemID: "r1-o0"})
	clock.Advance(600 * time.Millisecond)

	snap := s.Snapshot()
	if !snap.Finished {
		t.Fatal("Finished = false, want true")
	}
	if snap.PersistWarning == "" {
		t.Error("PersistWarning is empty, want a warning")
	}
	if snap.Log == nil || snap.Log.Score != 1 {
		t.Errorf("Log = %+v, want in-memory result with score 1", snap.Log)
	}
	if finishErr == nil || finished.Score != 1 {
		t.Errorf("OnFinish got score=%d err=%v, want 1 and an error", finished.Score, finishErr)
	}
}

func TestSessionSubscribe(t *testing.T) {
	s, _ := newTestSession(testConfig(models.ModeChoice, 1, 2), fiveWords()[:2], fiveWords(), newMemStore())

	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	if first.Phase != PhaseQuestionSelected {
		t.Errorf("first snapshot Phase = %v, want %v", first.Phase, PhaseQuestionSelected)
	}

	s.Do(Action{Kind: ActionOption, ItemID: "r1-o0"})
	if got := <-ch; got.Score != 1 {
		t.Errorf("pushed Score = %d, want 1", got.Score)
	}

	s.Exit()
	last, ok := <-ch
	if !ok || !last.Finished {
		t.Errorf("final snapshot finished=%v ok=%v, want true/true", last.Finished, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after the game ended")
	}

	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Exit")
	}
}

func TestSessionExitIsIdempotent(t *testing.T) {
	store := newMemStore()
	s, _ := newTestSession(testConfig(models.ModeMatching, 3, 3), threeWords(), nil, store)

	first := s.Exit()
	second := s.Exit()

	if first.SessionID != second.SessionID || !second.Finished {
		t.Errorf("Exit() snapshots differ: %s vs %s", first.SessionID, second.SessionID)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	saved, _ := store.only()
	if saved.Score != 0 || len(saved.Questions) != 3 {
		t.Errorf("saved score=%d questions=%d, want 0/3", saved.Score, len(saved.Questions))
	}
}

func TestSessionPerQuestionResetOnNewBatch(t *testing.T) {
	cfg := testConfig(models.ModeChoice, 1, 2)
	cfg.TimerMode = models.TimerPerQuestion
	cfg.TimeLimitSeconds = 5
	s, clock := newTestSession(cfg, fiveWords()[:2], fiveWords(), newMemStore())

	clock.Advance(2 * time.Second)
	if got := s.Snapshot().TimeLeftMs; got != 3000 {
		t.Errorf("TimeLeftMs = %d, want 3000", got)
	}
	s.Do(Action{Kind: ActionOption, ItemID: "r1-o0"})
	if got := s.Snapshot().TimeLeftMs; got != 5000 {
		t.Errorf("TimeLeftMs after correct = %d, want 5000", got)
	}
}

func TestSessionSaveDoesNotHoldLock(t *testing.T) {
	store := newMemStore()
	store.entered = make(chan struct{}, 1)
	store.release = make(chan struct{})
	s, _ := newTestSession(testConfig(models.ModeChoice, 1, 2), fiveWords()[:2], fiveWords(), store)

	exited := make(chan Snapshot, 1)
	go func() { exited <- s.Exit() }()

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("SaveSession was not called after Exit")
	}

	read := make(chan Snapshot, 1)
	go func() { read <- s.Snapshot() }()
	select {
	case snap := <-read:
		if !snap.Finished || snap.Log == nil {
			t.Errorf("Snapshot() during save finished=%v log=%v, want finished with log", snap.Finished, snap.Log)
		}
	case <-time.After(time.Second):
		t.Fatal("Snapshot() blocked while the log was being saved")
	}

	select {
	case <-exited:
		t.Fatal("Exit() returned before the save completed")
	default:
	}

	close(store.release)
	select {
	case snap := <-exited:
		if snap.EndReason != models.EndExited {
			t.Errorf("EndReason = %v, want %v", snap.EndReason, models.EndExited)
		}
	case <-time.After(time.Second):
		t.Fatal("Exit() did not return after the save completed")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestSessionAccelerationStartsAtMinimum(t *testing.T) {
	cfg := testConfig(models.ModeChoice, 1, 2)
	cfg.TimerMode = models.TimerAcceleration
	cfg.TimeLimitSeconds = 2
	s, _ := newTestSession(cfg, fiveWords()[:2], fiveWords(), newMemStore())

	if got := s.Snapshot().TimeLimitMs; got != 3000 {
		t.Errorf("TimeLimitMs = %d, want 3000", got)
	}
	s.Do(Action{Kind: ActionOption, ItemID: "r1-o0"})
	if got := s.Snapshot().TimeLimitMs; got != 3000 {
		t.Errorf("TimeLimitMs after correct = %d, want 3000", got)
	}
}
