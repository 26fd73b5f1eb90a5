package dto

import (
	"net/http"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
)

// Error codes returned in the response envelope
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	// ErrCodeInvalidTransition is returned for status changes the resident
	// state machine refuses, including any change to a deceased record
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeInvariantViolation is returned when a write would give a family
	// card a second active Kepala Keluarga
	ErrCodeInvariantViolation = "ERR_INVARIANT_VIOLATION"

	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
	ErrCodeUnavailable      = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidTransition:  http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusConflict,

	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeUnavailable:      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps domain error codes to API error codes
var domainErrorCodes = map[string]string{
	shared.CodeNotFound:           ErrCodeNotFound,
	shared.CodeAlreadyExists:      ErrCodeAlreadyExists,
	shared.CodeInvalidTransition:  ErrCodeInvalidTransition,
	shared.CodeInvariantViolation: ErrCodeInvariantViolation,
	shared.CodePermissionDenied:   ErrCodeForbidden,
	shared.CodeInvalidFormat:      ErrCodeValidationFormat,
	shared.CodeConflict:           ErrCodeConflict,
	shared.CodeTransient:          ErrCodeUnavailable,
}

// FromDomainCode converts a domain error code to the API code.
// Unknown codes map to ERR_INTERNAL.
func FromDomainCode(code string) string {
	if apiCode, ok := domainErrorCodes[code]; ok {
		return apiCode
	}
	return ErrCodeInternal
}
