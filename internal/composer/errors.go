package composer

import (
	"errors"
	"fmt"
)

var (
	ErrClosed            = errors.New("composer closed")
	ErrNotDrafting       = errors.New("start a draft first")
	ErrVibeRequired      = errors.New("tell us the vibe first")
	ErrAssistInFlight    = errors.New("a draft is already on its way")
	ErrAssistUnavailable = errors.New("draft assist unavailable")
	ErrSubmitInFlight    = errors.New("already posting")
	ErrMediaNotAllowed   = errors.New("your membership can't attach media")
)

// User-facing messages for remote failures. Both are safe to retry.
const (
	assistFailedMessage = "Couldn't get a draft right now. Try again in a sec."
	submitFailedMessage = "Couldn't post that right now. Try again in a sec."
)

// ValidationError is a local rule failure. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
