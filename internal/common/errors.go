// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Budget errors.
	ErrNoBudget         = errors.New("no budget configured")
	ErrBudgetExists     = errors.New("budget already exists")
	ErrSurplusProtected = errors.New("surplus category cannot be deleted")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError is a recoverable input error keyed to the offending field.
// Index is the split or sub-item position when relevant, -1 otherwise.
type ValidationError struct {
	Field   string
	Message string
	Index   int
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message, Index: -1}
}

// NewIndexedValidationError creates a validation error for a positional
// element such as a split line.
func NewIndexedValidationError(field string, index int, message string) error {
	return &ValidationError{Field: field, Message: message, Index: index}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvariantViolationError indicates a precondition failure in supplied data,
// such as a duplicated surplus category. The engine refuses to proceed rather
// than silently repairing.
type InvariantViolationError struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Invariant, e.Detail)
}

// NewInvariantViolation creates an invariant violation error.
func NewInvariantViolation(invariant, detail string) error {
	return &InvariantViolationError{Invariant: invariant, Detail: detail}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
