package leafpack

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MalformedContainerError reports a container (or encode input) that cannot
// be laid out or parsed: bad magic, truncated header, a length byte that does
// not fit the data, an unknown lock sentinel or an unusable filename.
type MalformedContainerError struct {
	Path    string // File path, if applicable
	Offset  int    // Byte offset of the offending field, -1 if unknown
	Message string // Human-readable error message
	Err     error  // Underlying sentinel
}

func (e *MalformedContainerError) Error() string {
	if e.Path != "" && e.Offset >= 0 {
		return fmt.Sprintf("malformed container: %s at offset %d: %s", e.Path, e.Offset, e.Message)
	} else if e.Path != "" {
		return fmt.Sprintf("malformed container: %s: %s", e.Path, e.Message)
	} else if e.Offset >= 0 {
		return fmt.Sprintf("malformed container: offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("malformed container: %s", e.Message)
}

func (e *MalformedContainerError) Unwrap() error {
	return e.Err
}

// PasswordRejectedError reports a protected container whose trailer does not
// match the supplied password, or for which no password was available.
type PasswordRejectedError struct {
	Path    string // File path, if applicable
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *PasswordRejectedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("password rejected: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("password rejected: %s", e.Message)
}

func (e *PasswordRejectedError) Unwrap() error {
	return e.Err
}

// InvalidCipherModeError is the panic value raised when a rotation mode
// outside 0-7 reaches the cipher. It indicates a bug, not bad input.
type InvalidCipherModeError struct {
	Mode int
}

func (e *InvalidCipherModeError) Error() string {
	return fmt.Sprintf("invalid cipher mode %d (must be 0-7)", e.Mode)
}

// IOError represents a file system I/O error
type IOError struct {
	Operation string // "read", "write", "rename", "stat", etc.
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrInvalidMagic      = errors.New("invalid magic bytes")
	ErrTruncated         = errors.New("container truncated")
	ErrLengthMismatch    = errors.New("length byte inconsistent with container size")
	ErrUnknownLock       = errors.New("unknown lock byte")
	ErrFilenameTooLong   = errors.New("filename too long")
	ErrUnsafeFilename    = errors.New("unsafe embedded filename")
	ErrPasswordMismatch  = errors.New("password does not match container")
	ErrPasswordRequired  = errors.New("container is password protected")
	ErrNilConfig         = errors.New("config cannot be nil")
	ErrUnsupportedScheme = errors.New("unsupported cipher scheme")
	ErrOutputExists      = errors.New("output file already exists")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// newMalformed creates a malformed container error for a sentinel
func newMalformed(offset int, sentinel error, message string) error {
	return &MalformedContainerError{
		Offset:  offset,
		Message: message,
		Err:     sentinel,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// withPath attaches a file path to container and password errors so callers
// working on files get the name in the message.
func withPath(err error, path string) error {
	var me *MalformedContainerError
	if errors.As(err, &me) && me.Path == "" {
		cp := *me
		cp.Path = path
		return &cp
	}
	var pe *PasswordRejectedError
	if errors.As(err, &pe) && pe.Path == "" {
		cp := *pe
		cp.Path = path
		return &cp
	}
	return err
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMalformed checks if an error is a malformed container error
func IsMalformed(err error) bool {
	var me *MalformedContainerError
	return errors.As(err, &me)
}

// IsPasswordRejected checks if an error is a password rejection
func IsPasswordRejected(err error) bool {
	var pe *PasswordRejectedError
	return errors.As(err, &pe)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
