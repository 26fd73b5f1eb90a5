package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeConflict           = "CONFLICT"
	CodeTransient          = "TRANSIENT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code and message.
// Two errors built from the same sentinel text compare equal even when
// they are distinct values.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// HasCode reports whether err is (or wraps) a DomainError with the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the DomainError code carried by err, or "" when err is not a domain error
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists    = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrPermissionDenied = NewDomainError(CodePermissionDenied, "Not permitted to perform this action")
	ErrConflict         = NewDomainError(CodeConflict, "Resource is still referenced")
	ErrTransient        = NewDomainError(CodeTransient, "Temporary contention, retry the request")
)
