package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEventNotFound is returned when an event id does not resolve.
	ErrEventNotFound = errors.New("event not found")
	// ErrQuestionNotFound indicates a missing question, including a gap in an event's levels.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrRuleNotFound is returned when a rule id does not resolve.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrScoreNotFound is returned when a player acts on an event they have not started.
	ErrScoreNotFound = errors.New("score not found")
	// ErrEventComplete signals the player has answered every question of the event.
	ErrEventComplete = errors.New("event complete")
	// ErrDuplicateLevel is returned when a question level is already taken in its event.
	ErrDuplicateLevel = errors.New("question level already exists for event")
	// ErrPermissionDenied is returned when the caller lacks the required capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated is returned when no principal is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrValidation marks malformed input; use Invalid to attach detail.
	ErrValidation = errors.New("validation failed")
)

// Invalid wraps ErrValidation with a message for the caller.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// IsNotFound groups the not-found family, including a finished event.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrEventComplete)
}
