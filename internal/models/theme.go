package models

import (
	"strings"
	"time"
)

// Theme is a node in the theme tree. Folders group other themes, leaves own words.
type Theme struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	IsFolder  bool      `json:"isFolder"`
	BuiltIn   bool      `json:"builtIn"`
	Position  int       `json:"position"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ThemeNode is a theme with its children, used to render the tree selector
type ThemeNode struct {
	Theme
	Children []ThemeNode `json:"children,omitempty"`
}

// Word is a bilingual entry belonging to a leaf theme
type Word struct {
	ID         int64     `json:"id"`
	ThemeID    int64     `json:"themeId"`
	SourceText string    `json:"source"`
	TargetText string    `json:"target"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WordInput is a source/target pair to be stored in a theme
type WordInput struct {
	SourceText string `json:"source" validate:"required"`
	TargetText string `json:"target" validate:"required"`
}

// ContentKey identifies a word by its normalized content rather than its ID.
// Two words with the same key are duplicates regardless of theme.
func (w Word) ContentKey() string {
	return strings.ToLower(strings.TrimSpace(w.SourceText)) + "\x1f" + strings.ToLower(strings.TrimSpace(w.TargetText))
}

// AnswerKey is the normalized text shown on the answer side
func (w Word) AnswerKey() string {
	return strings.ToLower(strings.TrimSpace(w.TargetText))
}

// Swapped returns the word with source and target exchanged
func (w Word) Swapped() Word {
	w.SourceText, w.TargetText = w.TargetText, w.SourceText
	return w
}

// ThemeInput creates a folder or a leaf theme, optionally with its words
type ThemeInput struct {
	Name     string      `json:"name" validate:"required,max=100"`
	ParentID *int64      `json:"parentId,omitempty"`
	IsFolder bool        `json:"isFolder"`
	Words    []WordInput `json:"words,omitempty" validate:"dive"`
}
