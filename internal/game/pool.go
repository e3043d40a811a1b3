package game

import (
	"context"
	"fmt"
	"math/rand"

	"wordclash/internal/models"
)

// WordSource provides the words of the selected themes
type WordSource interface {
	// ResolveThemesToWords returns the words of the given themes in selection order
	ResolveThemesToWords(ctx context.Context, themeIDs []int64) ([]models.Word, error)
	// FullDictionaryFor returns a superset of the themes' words used for distractors
	FullDictionaryFor(ctx context.Context, themeIDs []int64) ([]models.Word, error)
}

// ShuffleFunc has the signature of rand.Shuffle
type ShuffleFunc func(n int, swap func(i, j int))

var defaultShuffle ShuffleFunc = rand.Shuffle

// Pool is the input of a session: the question sequence and the dictionary
// distractors are drawn from
type Pool struct {
	Sequence   []models.Word
	Dictionary []models.Word
	// Size is the subset size: the distinct words the sequence is drawn
	// from after WordCount is applied, not the whole resolved pool
	Size int
}

// Resolver turns a theme selection into a question sequence
type Resolver struct {
	source  WordSource
	shuffle ShuffleFunc
}

// NewResolver creates a resolver. A nil shuffle uses math/rand.
func NewResolver(source WordSource, shuffle ShuffleFunc) *Resolver {
	if shuffle == nil {
		shuffle = defaultShuffle
	}
	return &Resolver{source: source, shuffle: shuffle}
}

// Resolve loads, deduplicates, shuffles, subsets and repeats the words of
// cfg.ThemeIDs into a sequence of exactly cfg.TotalQuestions words.
func (r *Resolver) Resolve(ctx context.Context, cfg models.GameConfig) (*Pool, error) {
	words, err := r.source.ResolveThemesToWords(ctx, cfg.ThemeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme words: %w", err)
	}

	unique := Deduplicate(words)
	if len(unique) == 0 {
		return nil, ErrEmptyPool
	}

	r.shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})

	subset := unique
	if cfg.WordCount > 0 && cfg.WordCount < len(unique) {
		subset = unique[:cfg.WordCount]
	}

	sequence := BuildSequence(subset, cfg.TotalQuestions, r.shuffle)

	dictionary, err := r.source.FullDictionaryFor(ctx, cfg.ThemeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	dictionary = Deduplicate(dictionary)

	if cfg.Direction == models.DirectionSwapped {
		sequence = SwapAll(sequence)
		dictionary = SwapAll(dictionary)
	}

	return &Pool{
		Sequence:   sequence,
		Dictionary: dictionary,
		Size:       len(subset),
	}, nil
}

// Deduplicate keeps the first occurrence of every content key
func Deduplicate(words []models.Word) []models.Word {
	seen := make(map[string]bool, len(words))
	out := make([]models.Word, 0, len(words))
	for _, w := range words {
		key := w.ContentKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// BuildSequence appends reshuffled copies of subset until total words are
// collected. An empty subset or non-positive total yields nil.
func BuildSequence(subset []models.Word, total int, shuffle ShuffleFunc) []models.Word {
	if len(subset) == 0 || total <= 0 {
		return nil
	}

	sequence := make([]models.Word, 0, total+len(subset))
	for len(sequence) < total {
		round := append([]models.Word(nil), subset...)
		shuffle(len(round), func(i, j int) {
			round[i], round[j] = round[j], round[i]
		})
		sequence = append(sequence, round...)
	}
	return sequence[:total]
}

// SwapAll returns a copy of words with source and target exchanged
func SwapAll(words []models.Word) []models.Word {
	out := make([]models.Word, len(words))
	for i, w := range words {
		out[i] = w.Swapped()
	}
	return out
}
