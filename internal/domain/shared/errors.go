package shared

import (
	"errors"
	"fmt"
)

// Error codes shared across bounded contexts
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeDependencyFailure   = "DEPENDENCY_FAILURE"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError is returned when an input is rejected before reaching a domain rule
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateError is returned when an operation is not permitted in the current state
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewDependencyError wraps a failure of an external collaborator (inventory store, waste ledger)
func NewDependencyError(operation string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeDependencyFailure,
		Message: operation + " failed",
		cause:   cause,
	}
}

// HasCode reports whether err is a DomainError carrying the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	return HasCode(err, CodeValidation)
}

// IsInvalidState reports whether err is an invalid-state error
func IsInvalidState(err error) bool {
	return HasCode(err, CodeInvalidState)
}

// IsDependencyError reports whether err is a collaborator failure
func IsDependencyError(err error) bool {
	return HasCode(err, CodeDependencyFailure)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)
