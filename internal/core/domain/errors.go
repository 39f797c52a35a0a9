// Package domain defines the core domain models for the job board.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes have the form JB-<AREA>-<NNNN>; the trailing four digits carry the
// HTTP status class so the transport layer can map them without a lookup table.
type DomainError struct {
	Code    string // Error code (e.g., "JB-JOB-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthenticated is returned for a missing or unverifiable session
	// credential. Absent, malformed, tampered and expired tokens all map here.
	ErrUnauthenticated = NewDomainError("JB-AUTH-4010", "Unauthorized Access.")

	// ErrTokenInvalid is the uniform verification failure of the token codec.
	ErrTokenInvalid = NewDomainError("JB-AUTH-4011", "invalid session token")

	// ErrForbidden indicates the verified identity does not own the requested scope.
	ErrForbidden = NewDomainError("JB-AUTH-4030", "Forbidden Access.")
)

// ============================================================================
// Job Errors (JOB)
// ============================================================================

var (
	// ErrJobNotFound indicates the referenced job does not exist.
	ErrJobNotFound = NewDomainError("JB-JOB-4040", "job not found")
)

// ============================================================================
// Application Errors (APPL)
// ============================================================================

var (
	// ErrApplicationNotFound indicates the requested application does not exist.
	ErrApplicationNotFound = NewDomainError("JB-APPL-4040", "application not found")

	// ErrApplicationValidation indicates the application payload lacks a field
	// the ledger depends on.
	ErrApplicationValidation = NewDomainError("JB-APPL-4001", "application validation failed")
)

// ============================================================================
// Storage Errors (STORE)
// ============================================================================

var (
	// ErrDocumentNotFound is returned by document stores for a missing id.
	ErrDocumentNotFound = NewDomainError("JB-STORE-4040", "document not found")

	// ErrDocumentConflict is returned when an insert reuses an existing id.
	ErrDocumentConflict = NewDomainError("JB-STORE-4090", "document id conflict")

	// ErrFieldNotNumeric is returned when incrementing a non-integer field.
	ErrFieldNotNumeric = NewDomainError("JB-STORE-4001", "field is not an integer")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("JB-SYS-5000", "internal server error")

	// ErrStorageError indicates the document store failed or timed out.
	ErrStorageError = NewDomainError("JB-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("JB-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("JB-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("JB-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("JB-ARG-1002", "missing required argument")
)
