package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType int

const (
	ErrorTypeConfig ErrorType = iota
	ErrorTypeCapability
	ErrorTypeHost
	ErrorTypePermission
	ErrorTypeStore
)

// ErrNotSupported marks an operation the active backend structurally cannot perform.
var ErrNotSupported = errors.New("not supported in this environment")

// String returns a string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfig:
		return "config"
	case ErrorTypeCapability:
		return "capability"
	case ErrorTypeHost:
		return "host"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeStore:
		return "store"
	default:
		return "unknown"
	}
}

// AppError represents a structured application error
type AppError struct {
	Type      ErrorType
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error in %s [%s]: %s", e.Type, e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error
func NewConfigError(operation, message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeConfig,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// NewCapabilityError creates an error for an operation the environment cannot
// perform. It always wraps ErrNotSupported.
func NewCapabilityError(operation, path, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeCapability,
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       ErrNotSupported,
	}
}

// NewHostError wraps a failure reported by a host primitive
func NewHostError(operation, path, message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeHost,
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation, path, message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypePermission,
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// NewStoreError creates a new handle store error
func NewStoreError(operation, message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeStore,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsCapabilityGap reports whether err describes an unsupported operation.
func IsCapabilityGap(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type, true
	}
	return 0, false
}

// Message returns the human-readable part of err, without the type prefix
// when err is an AppError.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
