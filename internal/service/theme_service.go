package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/models"
	"wordclash/internal/repository"
	"wordclash/internal/validation"
)

var (
	ErrReadOnlyTheme = errors.New("built-in themes cannot be changed")
	ErrNotAFolder    = errors.New("parent theme is not a folder")
	ErrNotALeaf      = errors.New("folders cannot hold words")
)

// ThemeService manages the theme tree and resolves selections into words
type ThemeService struct {
	repo *repository.ThemeRepository
}

// NewThemeService creates a new theme service
func NewThemeService(repo *repository.ThemeRepository) *ThemeService {
	return &ThemeService{repo: repo}
}

// themeIndex is the whole tree loaded once per resolution
type themeIndex struct {
	byID     map[int64]models.Theme
	children map[int64][]int64
	roots    []int64
}

func (s *ThemeService) loadIndex(ctx context.Context) (*themeIndex, error) {
	themes, err := s.repo.ListThemes(ctx)
	if err != nil {
		return nil, err
	}
	idx := &themeIndex{
		byID:     make(map[int64]models.Theme, len(themes)),
		children: make(map[int64][]int64),
	}
	for _, t := range themes {
		idx.byID[t.ID] = t
		if t.ParentID == nil {
			idx.roots = append(idx.roots, t.ID)
		} else {
			idx.children[*t.ParentID] = append(idx.children[*t.ParentID], t.ID)
		}
	}
	return idx, nil
}

// leaves appends the leaf themes under id, depth first in position order
func (idx *themeIndex) leaves(id int64, out []int64) []int64 {
	t := idx.byID[id]
	if !t.IsFolder {
		return append(out, id)
	}
	for _, child := range idx.children[id] {
		out = idx.leaves(child, out)
	}
	return out
}

func (idx *themeIndex) root(id int64) int64 {
	for {
		t := idx.byID[id]
		if t.ParentID == nil {
			return id
		}
		if _, ok := idx.byID[*t.ParentID]; !ok {
			return id
		}
		id = *t.ParentID
	}
}

func (idx *themeIndex) node(id int64) models.ThemeNode {
	n := models.ThemeNode{Theme: idx.byID[id]}
	for _, child := range idx.children[id] {
		c := idx.node(child)
		n.WordCount += c.WordCount
		n.Children = append(n.Children, c)
	}
	return n
}

// Tree returns every theme nested under its folder. Folder word counts
// include their descendants.
func (s *ThemeService) Tree(ctx context.Context) ([]models.ThemeNode, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]models.ThemeNode, 0, len(idx.roots))
	for _, id := range idx.roots {
		nodes = append(nodes, idx.node(id))
	}
	return nodes, nil
}

// ResolveThemesToWords returns the words of the selected themes in selection
// order. Folders expand to all of their leaves.
func (s *ThemeService) ResolveThemesToWords(ctx context.Context, themeIDs []int64) ([]models.Word, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	var leafIDs []int64
	for _, id := range themeIDs {
		if _, ok := idx.byID[id]; !ok {
			return nil, fmt.Errorf("theme %d: %w", id, repository.ErrNotFound)
		}
		leafIDs = idx.leaves(id, leafIDs)
	}
	return s.repo.GetWordsForThemes(ctx, leafIDs)
}

// FullDictionaryFor returns every word under the top-level themes that
// contain the selection. Distractors are drawn from it.
func (s *ThemeService) FullDictionaryFor(ctx context.Context, themeIDs []int64) ([]models.Word, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var leafIDs []int64
	for _, id := range themeIDs {
		if _, ok := idx.byID[id]; !ok {
			continue
		}
		root := idx.root(id)
		if seen[root] {
			continue
		}
		seen[root] = true
		leafIDs = idx.leaves(root, leafIDs)
	}
	return s.repo.GetWordsForThemes(ctx, leafIDs)
}

// GetTheme returns one theme with its words
func (s *ThemeService) GetTheme(ctx context.Context, id int64) (*models.Theme, []models.Word, error) {
	theme, err := s.repo.GetTheme(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	words, err := s.repo.ListWords(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return theme, words, nil
}

// CreateTheme adds a folder or a leaf theme under an optional parent folder
func (s *ThemeService) CreateTheme(ctx context.Context, in models.ThemeInput) (*models.Theme, error) {
	if err := validation.ValidateThemeInput(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.repo.GetTheme(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder {
			return nil, ErrNotAFolder
		}
		if parent.BuiltIn {
			return nil, ErrReadOnlyTheme
		}
	}
	return s.repo.CreateTheme(ctx, in.ParentID, strings.TrimSpace(in.Name), in.IsFolder, false, in.Words)
}

// RenameTheme renames a user theme
func (s *ThemeService) RenameTheme(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validation.Errors{{Field: "name", Message: "name is required"}}
	}
	if err := s.writable(ctx, id); err != nil {
		return err
	}
	return s.repo.RenameTheme(ctx, id, name)
}

// DeleteTheme removes a user theme with everything below it
func (s *ThemeService) DeleteTheme(ctx context.Context, id int64) error {
	if err := s.writable(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteTheme(ctx, id)
}

// AddWords appends words to a user leaf theme
func (s *ThemeService) AddWords(ctx context.Context, themeID int64, words []models.WordInput) ([]models.Word, error) {
	theme, err := s.repo.GetTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if theme.BuiltIn {
		return nil, ErrReadOnlyTheme
	}
	if theme.IsFolder {
		return nil, ErrNotALeaf
	}
	for _, w := range words {
		if err := validation.ValidateWord(w); err != nil {
			return nil, err
		}
	}
	return s.repo.AddWords(ctx, themeID, words)
}

// DeleteWord removes a word from a user theme
func (s *ThemeService) DeleteWord(ctx context.Context, themeID, wordID int64) error {
	if err := s.writable(ctx, themeID); err != nil {
		return err
	}
	return s.repo.DeleteWord(ctx, themeID, wordID)
}

func (s *ThemeService) writable(ctx context.Context, id int64) error {
	theme, err := s.repo.GetTheme(ctx, id)
	if err != nil {
		return err
	}
	if theme.BuiltIn {
		return ErrReadOnlyTheme
	}
	return nil
}

// SeedBuiltInThemes creates the built-in themes that do not exist yet
func (s *ThemeService) SeedBuiltInThemes(ctx context.Context) error {
	for _, folder := range builtInThemes {
		root, err := s.repo.FindTheme(ctx, nil, folder.name)
		if errors.Is(err, repository.ErrNotFound) {
			root, err = s.repo.CreateTheme(ctx, nil, folder.name, true, true, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", folder.name, err)
		}

		for _, leaf := range folder.leaves {
			_, err := s.repo.FindTheme(ctx, &root.ID, leaf.name)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to seed %s: %w", leaf.name, err)
			}
			if _, err := s.repo.CreateTheme(ctx, &root.ID, leaf.name, false, true, leaf.words); err != nil {
				return fmt.Errorf("failed to seed %s: %w", leaf.name, err)
			}
			log.WithFields(log.Fields{"folder": folder.name, "theme": leaf.name, "words": len(leaf.words)}).Info("Seeded built-in theme")
		}
	}
	return nil
}
