package game

import "errors"

var (
	// ErrEmptyPool is returned when the selected themes contain no words
	ErrEmptyPool = errors.New("selected themes contain no words")
	// ErrInvalidConfig wraps configuration validation failures
	ErrInvalidConfig = errors.New("invalid game configuration")
	// ErrGameFinished is returned for actions sent after the session ended
	ErrGameFinished = errors.New("game already finished")
	// ErrUnknownItem is returned for actions naming an item not on screen
	ErrUnknownItem = errors.New("unknown item")
	// ErrSessionFrozen is returned when writing to a finalized session log
	ErrSessionFrozen = errors.New("session log already finalized")
)
