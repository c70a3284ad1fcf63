package intake

import (
	"errors"
	"fmt"
)

// Reason identifies why a file was rejected.
type Reason string

const (
	ReasonTooLarge        Reason = "too_large"
	ReasonUnsupportedType Reason = "unsupported_type"
)

// RejectionError is returned for a file that failed intake.
// It implements the error interface and carries the reason for
// programmatic handling.
type RejectionError struct {
	// Reason categorizes the failure.
	Reason Reason

	// Message is a developer-facing description. User-facing text comes
	// from NoticeFor.
	Message string
}

// Error implements the error interface
func (e *RejectionError) Error() string {
	return fmt.Sprintf("intake rejected (%s): %s", e.Reason, e.Message)
}

// NewRejectionError creates a new RejectionError
func NewRejectionError(reason Reason, message string) *RejectionError {
	return &RejectionError{
		Reason:  reason,
		Message: message,
	}
}

// IsRejection checks if an error is a RejectionError
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

// IsReason checks if an error is a RejectionError with the given reason
func IsReason(err error, reason Reason) bool {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason == reason
	}
	return false
}

// ReasonOf returns the reason of a RejectionError, or empty string if err
// is not one
func ReasonOf(err error) Reason {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason
	}
	return ""
}
