package game

import (
	"context"
	"errors"
	"testing"

	"wordclash/internal/models"
)

func TestDeduplicate(t *testing.T) {
	pool := []models.Word{word(1, "A", "B"), word(2, "C", "D"), word(3, "C", "D")}

	got := Deduplicate(pool)
	if len(got) != 2 {
		t.Fatalf("Deduplicate() len = %d, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("Deduplicate() ids = %d,%d, want 1,2", got[0].ID, got[1].ID)
	}

	mixed := []models.Word{word(1, " Hund ", "dog"), word(2, "hund", "dog"), word(3, "hund", "Hound")}
	if got := Deduplicate(mixed); len(got) != 2 {
		t.Errorf("Deduplicate() normalized len = %d, want 2", len(got))
	}
}

func TestResolveSequenceLength(t *testing.T) {
	source := &memSource{words: []models.Word{
		word(1, "a", "A"), word(2, "b", "B"), word(3, "c", "C"), word(4, "c", "C"),
	}}

	tests := []struct {
		name      string
		wordCount int
		total     int
		wantSize  int
	}{
		{"whole pool, shorter sequence", 0, 2, 3},
		{"whole pool, exact", 0, 3, 3},
		{"whole pool, repeated", 0, 10, 3},
		{"subset repeated", 2, 5, 2},
		{"subset larger than pool", 9, 4, 3},
		{"single question", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(models.ModeChoice, 1, tt.total)
			cfg.WordCount = tt.wordCount

			pool, err := NewResolver(source, nil).Resolve(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(pool.Sequence) != tt.total {
				t.Errorf("len(Sequence) = %d, want %d", len(pool.Sequence), tt.total)
			}
			if pool.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", pool.Size, tt.wantSize)
			}
		})
	}
}

func TestResolveSubsetMembership(t *testing.T) {
	source := &memSource{words: []models.Word{
		word(1, "a", "A"), word(2, "b", "B"), word(3, "c", "C"), word(4, "d", "D"),
	}}
	cfg := testConfig(models.ModeChoice, 1, 5)
	cfg.WordCount = 2

	pool, err := NewResolver(source, nil).Resolve(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	ids := map[int64]bool{}
	for _, w := range pool.Sequence {
		ids[w.ID] = true
	}
	if len(ids) != 2 {
		t.Errorf("distinct ids in sequence = %d, want 2", len(ids))
	}
	if len(pool.Sequence) != 5 {
		t.Errorf("len(Sequence) = %d, want 5", len(pool.Sequence))
	}
}

func TestResolveEmptyPool(t *testing.T) {
	_, err := NewResolver(&memSource{}, nil).Resolve(context.Background(), testConfig(models.ModeChoice, 1, 5))
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrEmptyPool)
	}

	loadErr := errors.New("disk gone")
	_, err = NewResolver(&memSource{err: loadErr}, nil).Resolve(context.Background(), testConfig(models.ModeChoice, 1, 5))
	if !errors.Is(err, loadErr) {
		t.Errorf("Resolve() error = %v, want %v", err, loadErr)
	}
}

func TestResolveSwapped(t *testing.T) {
	source := &memSource{
		words:      []models.Word{word(1, "Hund", "dog")},
		dictionary: []models.Word{word(1, "Hund", "dog"), word(2, "Katze", "cat")},
	}
	cfg := testConfig(models.ModeChoice, 1, 1)
	cfg.Direction = models.DirectionSwapped

	pool, err := NewResolver(source, noShuffle).Resolve(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := pool.Sequence[0]; got.SourceText != "dog" || got.TargetText != "Hund" {
		t.Errorf("Sequence[0] = %s/%s, want dog/Hund", got.SourceText, got.TargetText)
	}
	if got := pool.Dictionary[1]; got.SourceText != "cat" || got.TargetText != "Katze" {
		t.Errorf("Dictionary[1] = %s/%s, want cat/Katze", got.SourceText, got.TargetText)
	}
}

func TestBuildSequenceEmpty(t *testing.T) {
	if got := BuildSequence(nil, 5, noShuffle); got != nil {
		t.Errorf("BuildSequence(nil) = %v, want nil", got)
	}
	if got := BuildSequence([]models.Word{word(1, "a", "b")}, 0, noShuffle); got != nil {
		t.Errorf("BuildSequence(total=0) = %v, want nil", got)
	}
}

func TestPickDistractors(t *testing.T) {
	batch := []models.Word{word(1, "Hund", "dog")}
	dictionary := []models.Word{
		word(1, "Hund", "dog"),
		word(2, "Köter", "Dog"),
		word(3, "Katze", "cat"),
		word(4, "Mieze", "cat"),
		word(5, "Maus", "mouse"),
	}

	got := pickDistractors(batch, dictionary, 5, noShuffle)
	if len(got) != 2 {
		t.Fatalf("pickDistractors() len = %d, want 2", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 5 {
		t.Errorf("pickDistractors() ids = %d,%d, want 3,5", got[0].ID, got[1].ID)
	}
}
