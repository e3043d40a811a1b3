package game

import (
	"fmt"
	"strings"
)

// ActionKind names the column a player clicked
type ActionKind string

const (
	// ActionQuestion is a click on a question (the left column in matching)
	ActionQuestion ActionKind = "question"
	// ActionOption is a click on an answer option (the right column in matching)
	ActionOption ActionKind = "option"
)

// Action is one player interaction
type Action struct {
	Kind   ActionKind `json:"kind"`
	ItemID string     `json:"itemId"`
}

// ParseActionKind accepts the column names used by both round modes
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "question", "left":
		return ActionQuestion, nil
	case "option", "right":
		return ActionOption, nil
	}
	return "", fmt.Errorf("%w: action kind %q", ErrUnknownItem, s)
}

type eventKind int

const (
	evFeedbackDone eventKind = iota
	evAdvance
)

// event is a scheduled transition. gen is the batch it was scheduled in;
// events from an earlier batch are dropped.
type event struct {
	kind eventKind
	gen  int
}
