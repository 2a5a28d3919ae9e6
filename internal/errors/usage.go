package errors

import (
	"errors"
	"fmt"
)

// ErrHelpRequested signals that usage text should be shown and the program should exit cleanly.
var ErrHelpRequested = errors.New("help requested")

// UsageError represents malformed command-line input.
type UsageError struct {
	Message string
	// Hint shows the expected input format, if any.
	Hint string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a UsageError with the given message and format hint.
func NewUsageError(hint string, format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...), Hint: hint}
}

// IsUsageError reports whether err is a UsageError (even when wrapped).
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return errors.As(err, &usageErr)
}

// IsHelpRequested reports whether err asks for usage text.
func IsHelpRequested(err error) bool {
	return errors.Is(err, ErrHelpRequested)
}
