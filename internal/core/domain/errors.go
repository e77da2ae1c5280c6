package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes use the form MR-<CATEGORY>-<NNNN>. Two DomainErrors compare equal
// under errors.Is when their codes match, so wrapped copies produced by
// WithDetails or WithCause still match the package-level sentinels.
type DomainError struct {
	Code    string // Error code (e.g., "MR-PAT-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
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

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
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

// IsValidationError reports whether err rejects caller input.
func IsValidationError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), "MR-VAL-")
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPatientNotFound)
}

// IsIOError reports whether err came from reading or writing persisted data.
func IsIOError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), "MR-IO-")
}

// ============================================================================
// Validation Errors (VAL)
// ============================================================================

var (
	// ErrDuplicateID indicates the patient id is already held by an active record.
	ErrDuplicateID = NewDomainError("MR-VAL-4090", "patient id already exists")

	// ErrInvalidAge indicates the age is outside [MinAge, MaxAge].
	ErrInvalidAge = NewDomainError("MR-VAL-4001", "patient age out of range")

	// ErrScheduleSlot indicates a day or shift index outside the weekly grid.
	ErrScheduleSlot = NewDomainError("MR-VAL-4002", "schedule slot out of range")
)

// ============================================================================
// Lookup Errors (PAT)
// ============================================================================

var (
	// ErrPatientNotFound indicates no active record has the requested id.
	ErrPatientNotFound = NewDomainError("MR-PAT-4040", "patient not found")
)

// ============================================================================
// I/O Errors (IO)
// ============================================================================

var (
	// ErrNotPresent indicates the primary data file does not exist yet.
	// Startup load treats it as an empty store.
	ErrNotPresent = NewDomainError("MR-IO-4040", "data file not present")

	// ErrNoBackupFound indicates the backup location holds no backup.
	ErrNoBackupFound = NewDomainError("MR-IO-4041", "no backup found")

	// ErrUnreadable indicates a persisted file exists but cannot be read.
	ErrUnreadable = NewDomainError("MR-IO-5001", "data unreadable")

	// ErrUnwritable indicates a persisted file could not be written.
	ErrUnwritable = NewDomainError("MR-IO-5002", "data unwritable")

	// ErrTruncatedStream indicates fewer bytes than the record count implies.
	ErrTruncatedStream = NewDomainError("MR-IO-5003", "truncated snapshot stream")

	// ErrCorruptSnapshot indicates a structurally invalid snapshot.
	ErrCorruptSnapshot = NewDomainError("MR-IO-5004", "corrupt snapshot")

	// ErrChecksumMismatch indicates the snapshot trailer does not match its content.
	ErrChecksumMismatch = NewDomainError("MR-IO-5005", "snapshot checksum mismatch")
)

// ============================================================================
// Configuration Errors (CFG)
// ============================================================================

var (
	// ErrArchiveDisabled indicates an archive operation without an archive.
	ErrArchiveDisabled = NewDomainError("MR-CFG-4001", "discharge archive not configured")

	// ErrBackupDisabled indicates a backup operation without a backup target.
	ErrBackupDisabled = NewDomainError("MR-CFG-4002", "backup target not configured")
)
