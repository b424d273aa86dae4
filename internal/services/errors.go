package services

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound covers both a missing task and a task owned by another
// user; callers cannot tell the two apart.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError rejects a status change the lifecycle table does not allow.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// IsValidation reports whether err is caller-correctable input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	var te *TransitionError
	return errors.As(err, &ve) || errors.As(err, &te)
}
