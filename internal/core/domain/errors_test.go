package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("JB-TEST-1000", "test message"),
			expected: "[JB-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("JB-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[JB-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("JB-TEST-1000", "message 1")
	err2 := NewDomainError("JB-TEST-1000", "message 2")
	err3 := NewDomainError("JB-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("submit: %w", ErrJobNotFound.WithDetails("job-1"))
	if !errors.Is(wrapped, ErrJobNotFound) {
		t.Error("errors.Is should see through fmt wrapping and details")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := ErrStorageError.WithCause(cause)

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if errors.Unwrap(ErrStorageError) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_CopiesDoNotMutate(t *testing.T) {
	withDetails := ErrForbidden.WithDetails("scope mismatch")
	if ErrForbidden.Details != "" {
		t.Error("WithDetails should not modify the sentinel")
	}
	if withDetails.Code != ErrForbidden.Code {
		t.Errorf("code = %s, want %s", withDetails.Code, ErrForbidden.Code)
	}

	withCause := ErrForbidden.WithCause(errors.New("x"))
	if ErrForbidden.Cause != nil {
		t.Error("WithCause should not modify the sentinel")
	}
	if withCause.Details != "" {
		t.Error("WithCause should keep details of the receiver")
	}
}

func TestIsDomainError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrApplicationNotFound)

	if !IsDomainError(err, "") {
		t.Error("expected wrapped domain error to be detected")
	}
	if !IsDomainError(err, "JB-APPL-4040") {
		t.Error("expected code match")
	}
	if IsDomainError(err, "JB-JOB-4040") {
		t.Error("unexpected code match")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("plain error is not a domain error")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(fmt.Errorf("x: %w", ErrUnauthenticated)); got != "JB-AUTH-4010" {
		t.Errorf("GetErrorCode() = %q, want JB-AUTH-4010", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}
