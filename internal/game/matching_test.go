package game

import (
	"errors"
	"testing"
	"time"

	"wordclash/internal/models"
)

func threeWords() []models.Word {
	return []models.Word{word(1, "Hund", "dog"), word(2, "Katze", "cat"), word(3, "Maus", "mouse")}
}

func TestMatchingRoundInit(t *testing.T) {
	dictionary := append(threeWords(), word(4, "Vogel", "bird"), word(5, "Fisch", "fish"))
	s, _ := newTestSession(testConfig(models.ModeMatching, 2, 4), threeWords()[:2], dictionary, newMemStore())

	snap := s.Snapshot()
	if len(snap.Questions) != 2 {
		t.Errorf("len(Questions) = %d, want 2", len(snap.Questions))
	}
	if len(snap.Options) != 4 {
		t.Errorf("len(Options) = %d, want 4", len(snap.Options))
	}
	if snap.SelectedQuestion != "r1-l0" {
		t.Errorf("SelectedQuestion = %q, want %q", snap.SelectedQuestion, "r1-l0")
	}
	if snap.Phase != PhaseQuestionSelected {
		t.Errorf("Phase = %v, want %v", snap.Phase, PhaseQuestionSelected)
	}
	if snap.Questions[0].State != ItemSelected {
		t.Errorf("Questions[0].State = %v, want %v", snap.Questions[0].State, ItemSelected)
	}
}

func TestMatchingMismatchFeedback(t *testing.T) {
	s, clock := newTestSession(testConfig(models.ModeMatching, 3, 3), threeWords(), nil, newMemStore())

	snap, err := s.Do(Action{Kind: ActionOption, ItemID: "r1-r1"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if snap.Mistakes != 1 {
		t.Errorf("Mistakes = %d, want 1", snap.Mistakes)
	}
	if snap.Phase != PhaseFeedback {
		t.Errorf("Phase = %v, want %v", snap.Phase, PhaseFeedback)
	}
	if snap.Questions[0].State != ItemError || snap.Options[1].State != ItemError {
		t.Errorf("error states = %v/%v, want error/error", snap.Questions[0].State, snap.Options[1].State)
	}
	if snap.Options[0].State != ItemSuccessHint {
		t.Errorf("Options[0].State = %v, want %v", snap.Options[0].State, ItemSuccessHint)
	}

	// clicks during feedback are ignored
	snap, _ = s.Do(Action{Kind: ActionOption, ItemID: "r1-r0"})
	if snap.Score != 0 {
		t.Errorf("Score during feedback = %d, want 0", snap.Score)
	}

	clock.Advance(400 * time.Millisecond)
	snap = s.Snapshot()
	if snap.Phase != PhaseQuestionSelected {
		t.Errorf("Phase after feedback = %v, want %v", snap.Phase, PhaseQuestionSelected)
	}
	if snap.Options[0].State != ItemDefault || snap.Options[1].State != ItemDefault {
		t.Errorf("option states after feedback = %v/%v, want default", snap.Options[0].State, snap.Options[1].State)
	}
	if snap.SelectedQuestion != "r1-l0" {
		t.Errorf("SelectedQuestion = %q, want %q", snap.SelectedQuestion, "r1-l0")
	}
}

func TestMatchingReselectLeft(t *testing.T) {
	s, _ := newTestSession(testConfig(models.ModeMatching, 3, 3), threeWords(), nil, newMemStore())

	snap, _ := s.Do(Action{Kind: ActionQuestion, ItemID: "r1-l2"})
	if snap.SelectedQuestion != "r1-l2" {
		t.Fatalf("SelectedQuestion = %q, want %q", snap.SelectedQuestion, "r1-l2")
	}
	if snap.Questions[0].State != ItemDefault {
		t.Errorf("Questions[0].State = %v, want %v", snap.Questions[0].State, ItemDefault)
	}

	snap, _ = s.Do(Action{Kind: ActionOption, ItemID: "r1-r2"})
	if snap.Score != 1 {
		t.Errorf("Score = %d, want 1", snap.Score)
	}
	if snap.Questions[2].State != ItemMatched || snap.Options[2].State != ItemMatched {
		t.Errorf("matched states = %v/%v, want matched/matched", snap.Questions[2].State, snap.Options[2].State)
	}
	if snap.SelectedQuestion != "r1-l0" {
		t.Errorf("SelectedQuestion = %q, want %q", snap.SelectedQuestion, "r1-l0")
	}

	// matched items no longer react
	snap, _ = s.Do(Action{Kind: ActionQuestion, ItemID: "r1-l2"})
	if snap.SelectedQuestion != "r1-l0" {
		t.Errorf("SelectedQuestion after clicking matched = %q, want %q", snap.SelectedQuestion, "r1-l0")
	}
}

func TestMatchingExitPartialScore(t *testing.T) {
	store := newMemStore()
	s, _ := newTestSession(testConfig(models.ModeMatching, 3, 3), threeWords(), nil, store)

	if _, err := s.Do(Action{Kind: ActionOption, ItemID: "r1-r0"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	snap := s.Exit()

	if !snap.Finished || snap.EndReason != models.EndExited {
		t.Errorf("Exit() finished=%v reason=%v, want true/%v", snap.Finished, snap.EndReason, models.EndExited)
	}
	saved, ok := store.only()
	if !ok {
		t.Fatal("no session persisted")
	}
	if saved.Score != 1 {
		t.Errorf("Score = %d, want 1", saved.Score)
	}
	if len(saved.Questions) != 3 {
		t.Fatalf("len(Questions) = %d, want 3", len(saved.Questions))
	}
	unresolved := 0
	for _, q := range saved.Questions {
		if q.SelectedOptionID == nil {
			unresolved++
		}
	}
	if unresolved != 2 {
		t.Errorf("unresolved questions = %d, want 2", unresolved)
	}
}

func TestMatchingCompletionFiresOnce(t *testing.T) {
	store := newMemStore()
	sequence := append(threeWords(), threeWords()...)
	s, clock := newTestSession(testConfig(models.ModeMatching, 3, 6), sequence, nil, store)

	for _, id := range []string{"r1-r0", "r1-r1", "r1-r2"} {
		if _, err := s.Do(Action{Kind: ActionOption, ItemID: id}); err != nil {
			t.Fatalf("Do(%s) error = %v", id, err)
		}
	}
	if got := s.Snapshot().Phase; got != PhaseAdvancing {
		t.Fatalf("Phase = %v, want %v", got, PhaseAdvancing)
	}

	// a second advance scheduled for the same batch must not skip a batch
	s.mu.Lock()
	s.schedule(evAdvance)
	s.mu.Unlock()

	clock.Advance(600 * time.Millisecond)
	snap := s.Snapshot()
	if snap.Batch != 2 {
		t.Errorf("Batch = %d, want 2", snap.Batch)
	}
	if snap.Finished {
		t.Error("Finished = true after first batch, want false")
	}
	if snap.SelectedQuestion != "r2-l0" {
		t.Errorf("SelectedQuestion = %q, want %q", snap.SelectedQuestion, "r2-l0")
	}
}

func TestMatchingStaleAdvanceIgnored(t *testing.T) {
	s, clock := newTestSession(testConfig(models.ModeMatching, 1, 3), threeWords(), nil, newMemStore())

	s.Do(Action{Kind: ActionOption, ItemID: "r1-r0"})
	clock.Advance(600 * time.Millisecond)
	if got := s.Snapshot().Batch; got != 2 {
		t.Fatalf("Batch = %d, want 2", got)
	}

	s.deliver(event{kind: evAdvance, gen: 1})
	s.deliver(event{kind: evAdvance, gen: 2})

	snap := s.Snapshot()
	if snap.Batch != 2 {
		t.Errorf("Batch after stale advance = %d, want 2", snap.Batch)
	}
	if snap.Score != 1 {
		t.Errorf("Score = %d, want 1", snap.Score)
	}
}

func TestMatchingFullGame(t *testing.T) {
	store := newMemStore()
	s, clock := newTestSession(testConfig(models.ModeMatching, 2, 3), threeWords(), nil, store)

	s.Do(Action{Kind: ActionOption, ItemID: "r1-r0"})
	s.Do(Action{Kind: ActionOption, ItemID: "r1-r1"})
	clock.Advance(600 * time.Millisecond)

	snap := s.Snapshot()
	if len(snap.Questions) != 1 {
		t.Fatalf("len(Questions) in last batch = %d, want 1", len(snap.Questions))
	}
	s.Do(Action{Kind: ActionOption, ItemID: "r2-r0"})
	clock.Advance(600 * time.Millisecond)

	snap = s.Snapshot()
	if !snap.Finished || snap.EndReason != models.EndCompleted {
		t.Fatalf("finished=%v reason=%v, want true/%v", snap.Finished, snap.EndReason, models.EndCompleted)
	}
	if snap.Score != 3 {
		t.Errorf("Score = %d, want 3", snap.Score)
	}
	if snap.Log == nil || len(snap.Log.Questions) != 3 {
		t.Errorf("Log questions = %v, want 3 entries", snap.Log)
	}

	s.Exit()
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}

	if _, err := s.Do(Action{Kind: ActionOption, ItemID: "r2-r0"}); !errors.Is(err, ErrGameFinished) {
		t.Errorf("Do() after finish error = %v, want %v", err, ErrGameFinished)
	}
}

func TestMatchingUnknownItem(t *testing.T) {
	s, _ := newTestSession(testConfig(models.ModeMatching, 1, 1), threeWords(), nil, newMemStore())

	if _, err := s.Do(Action{Kind: ActionOption, ItemID: "r0-r0"}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Do() error = %v, want %v", err, ErrUnknownItem)
	}
}
