// Package fault defines the coded error values the engine returns for
// expected failures. Callers branch on the stable Code; repository I/O
// failures are wrapped and propagated untouched, never translated into a
// fault code.
package fault

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error discriminator.
type Code string

// Fault codes the engine can return.
const (
	CodeNotFound          Code = "not_found"
	CodePermissionDenied  Code = "permission_denied"
	CodeAlreadyExists     Code = "already_exists"
	CodeAlreadyReacted    Code = "already_reacted"
	CodeAlreadyVoted      Code = "already_voted"
	CodeInvalidReaction   Code = "invalid_reaction_type"
	CodeSuggestionSettled Code = "suggestion_not_pending"
	CodeReactionNotFound  Code = "reaction_not_found"
)

// Error carries a stable code and a human message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches two faults by code so errors.Is works against sentinels
// constructed with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New builds a fault with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the fault code from err, or "" when err is not a fault.
func CodeOf(err error) Code {
	var f *Error
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}

// IsCode reports whether err carries the given fault code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
