package booking

import (
	"errors"
	"fmt"
)

// ErrSlotTaken is returned when a reservation loses the race for a slot that
// looked free when the caller picked it. Expected, not exceptional; callers
// prompt for another time.
var ErrSlotTaken = errors.New("slot already taken")

// ValidationError reports a malformed or missing booking field. Recoverable:
// the conversation engine re-prompts in the same step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps a ledger storage failure. Fatal to the current
// operation; no partial writes are left behind.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
