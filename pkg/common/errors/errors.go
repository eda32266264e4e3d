// Package errors defines the error values shared by taskflow components.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrChannelClosed indicates that an actor's loop has exited and its
	// mailbox no longer accepts or answers messages.
	ErrChannelClosed = errors.New("channel closed")

	// ErrAlreadyListening is returned when Listen is called more than once
	// on the same component.
	ErrAlreadyListening = errors.New("already listening")

	// ErrUnknownJob indicates that a job ID is not registered with the scheduler.
	ErrUnknownJob = errors.New("unknown job")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsChannelClosed reports whether err signals a stopped actor.
func IsChannelClosed(err error) bool {
	return errors.Is(err, ErrChannelClosed)
}

// SchedulerError is returned by the schedule actor when the cron engine
// rejects an expression or a job ID is unknown.
type SchedulerError struct {
	Op   string
	Spec string
	ID   uuid.UUID
	Err  error
}

func (e *SchedulerError) Error() string {
	switch {
	case e.Spec != "":
		return fmt.Sprintf("scheduler: %s %q: %v", e.Op, e.Spec, e.Err)
	case e.ID != uuid.Nil:
		return fmt.Sprintf("scheduler: %s %s: %v", e.Op, e.ID, e.Err)
	default:
		return fmt.Sprintf("scheduler: %s: %v", e.Op, e.Err)
	}
}

func (e *SchedulerError) Unwrap() error { return e.Err }

// IsSchedulerError reports whether err is or wraps a *SchedulerError.
func IsSchedulerError(err error) bool {
	var se *SchedulerError
	return errors.As(err, &se)
}

// PanicError carries a value recovered from a panicking transform.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("transform panicked: %v", e.Value)
}

// ValidationError describes an invalid constructor or config argument.
type ValidationError struct {
	Module string
	Field  string
	Value  any
	Reason string
	Hint   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value any, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint sets the hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
