package dto

import (
	"net/http"

	"github.com/shopkeeper/backend/internal/domain/shared"
)

// Error codes returned in the response envelope. Domain codes pass through unchanged.
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeDependencyFailure   = shared.CodeDependencyFailure
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeAlreadyExists       = shared.CodeAlreadyExists
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict

	// ErrCodeInternal is used for errors that carry no domain code
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeUnavailable is used while the service is shutting down or unhealthy
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeDependencyFailure:   http.StatusBadGateway,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
