package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGameNotFound is returned for an unknown game id or join code.
	ErrGameNotFound = errors.New("game not found")
	// ErrPlayerNotFound is returned for an unknown player id.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrQuestionNotFound indicates a question id that is unknown or belongs to another game.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPlayerCompleted is returned when a finished player submits another answer.
	ErrPlayerCompleted = errors.New("player already completed the game")

	// ErrDuplicatePlayer is reported by stores when the (name, phone, game) triple exists.
	ErrDuplicatePlayer = errors.New("player already registered")
	// ErrAnswerExists is reported by stores when the question was already answered by the player.
	ErrAnswerExists = errors.New("question already answered")
	// ErrCodeTaken is reported by stores when the join code is in use.
	ErrCodeTaken = errors.New("join code already in use")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes input rejected before reaching storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
