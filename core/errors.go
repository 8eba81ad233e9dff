package core

import (
	"errors"
	"strings"
)

// ErrNotFound is wrapped by collaborators when a lookup finds no row.
// A miss is an expected business outcome, never a failure of the call.
var ErrNotFound = errors.New("not found")

// ErrConsequenceNotFound matches (via errors.Is) every failure to select a consequence rule.
var ErrConsequenceNotFound = NewPreconditionError(MsgProductConsequenceNotFound)

// PreconditionError reports a malformed call or unusable configuration.
// Error() returns Message verbatim so callers can surface it unmodified;
// Cause keeps the internal diagnostic (parse error, no-match marker) for logging.
type PreconditionError struct {
	// Message is the fixed, field-specific text shown to callers
	Message string
	// Cause is the optional underlying diagnostic
	Cause error
}

// NewPreconditionError creates a precondition error without a cause
func NewPreconditionError(message string) *PreconditionError {
	return &PreconditionError{Message: message}
}

// WrapPrecondition creates a precondition error that keeps cause for diagnostics
func WrapPrecondition(message string, cause error) *PreconditionError {
	return &PreconditionError{Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return e.Message
}

// Unwrap returns the diagnostic cause.
func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PreconditionError with the same message.
func (e *PreconditionError) Is(target error) bool {
	t, ok := target.(*PreconditionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// IsPrecondition reports whether err is (or wraps) a *PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err signals a missing lookup row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isBlank reports whether s is empty or whitespace only
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
