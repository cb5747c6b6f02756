package service

import (
	"errors"
	"fmt"
)

var (
	// ErrBulkTooLarge indicates a bulk request listed more ids than allowed.
	// It wraps domain.ErrValidation through the ValidationError it is reported in.
	ErrBulkTooLarge = errors.New("too many task ids")
)

// TaskServiceError adds the failing operation to an error returned by the
// task service. errors.Is and errors.As see through it.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "transition", "assign")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
