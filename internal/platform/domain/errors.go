package domain

import "fmt"

// ValidationError indicates that input data failed domain validation.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Error returns the validation failure message.
func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates that a requested entity does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

// NewNotFoundError creates a new NotFoundError for the given entity and key.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// Error returns the not-found message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// InvalidStateError indicates an illegal state machine transition.
type InvalidStateError struct {
	From string
	To   string
}

// NewInvalidStateError creates a new InvalidStateError for the attempted transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// Error returns the invalid-transition message.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ForbiddenError indicates the caller is not allowed to perform the operation.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a new ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// Error returns the forbidden message.
func (e *ForbiddenError) Error() string {
	return e.Message
}

// ConflictError indicates a concurrent modification was detected.
type ConflictError struct {
	Message string
}

// NewConflictError creates a new ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// Error returns the conflict message.
func (e *ConflictError) Error() string {
	return e.Message
}
