package planter

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code
// 2: a bad plan file, an unreadable template, a spawn failure and so on.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// FailureError represents failing validation or failing/unknown test results
// (exit code 1).
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	return e.Message
}

// NewFailureError creates a new FailureError.
func NewFailureError(message string) *FailureError {
	return &FailureError{Message: message}
}

// IsFailureError checks if the error is or wraps a FailureError.
func IsFailureError(err error) bool {
	var failureErr *FailureError
	return err != nil && errors.As(err, &failureErr)
}
