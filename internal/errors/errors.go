package errors

import (
	"errors"
	"fmt"
)

// OpError represents errors that occur during backup and restore operations
type OpError struct {
	Type    OpErrorType            `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause error
func (e *OpError) Unwrap() error {
	return e.Cause
}

// OpErrorType represents different types of operation errors
type OpErrorType string

const (
	TypeDependencyMissing   OpErrorType = "DEPENDENCY_MISSING"
	TypeConfigNotFound      OpErrorType = "CONFIG_NOT_FOUND"
	TypeConfigIncomplete    OpErrorType = "CONFIG_INCOMPLETE"
	TypeDetectionFailed     OpErrorType = "ENVIRONMENT_DETECTION_FAILED"
	TypeContainerResolution OpErrorType = "CONTAINER_RESOLUTION_ERROR"
	TypeContainerNotRunning OpErrorType = "CONTAINER_NOT_RUNNING"
	TypeDumpEmpty           OpErrorType = "DUMP_EMPTY_ERROR"
	TypeRestoreExec         OpErrorType = "RESTORE_EXEC_ERROR"
	TypeInvalidArchive      OpErrorType = "INVALID_ARCHIVE"
	TypeFileRestoreIO       OpErrorType = "FILE_RESTORE_IO_ERROR"
	TypePackaging           OpErrorType = "PACKAGING_ERROR"
)

// New creates a new OpError
func New(errorType OpErrorType, message string, cause error) *OpError {
	return &OpError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *OpError) WithContext(key string, value interface{}) *OpError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common error constructors
func NewDependencyMissing(message string, cause error) *OpError {
	return New(TypeDependencyMissing, message, cause)
}

func NewConfigNotFound(message string, cause error) *OpError {
	return New(TypeConfigNotFound, message, cause)
}

func NewConfigIncomplete(message string, cause error) *OpError {
	return New(TypeConfigIncomplete, message, cause)
}

func NewDetectionFailed(message string, cause error) *OpError {
	return New(TypeDetectionFailed, message, cause)
}

func NewContainerResolution(message string, cause error) *OpError {
	return New(TypeContainerResolution, message, cause)
}

func NewContainerNotRunning(message string, cause error) *OpError {
	return New(TypeContainerNotRunning, message, cause)
}

func NewDumpEmpty(message string, cause error) *OpError {
	return New(TypeDumpEmpty, message, cause)
}

func NewRestoreExec(message string, cause error) *OpError {
	return New(TypeRestoreExec, message, cause)
}

func NewInvalidArchive(message string, cause error) *OpError {
	return New(TypeInvalidArchive, message, cause)
}

func NewFileRestoreIO(message string, cause error) *OpError {
	return New(TypeFileRestoreIO, message, cause)
}

func NewPackaging(message string, cause error) *OpError {
	return New(TypePackaging, message, cause)
}

// TypeOf returns the OpErrorType carried by err, or the empty string when
// err is not an OpError anywhere in its chain.
func TypeOf(err error) OpErrorType {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ""
}

// IsType reports whether err carries the given OpErrorType.
func IsType(err error, t OpErrorType) bool {
	return TypeOf(err) == t
}
