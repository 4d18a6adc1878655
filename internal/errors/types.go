package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeContent    ErrorType = "content"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// FolioError is a structured error type with context.
type FolioError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code.
func (e *FolioError) Is(target error) bool {
	var t *FolioError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FolioError) WithContext(key string, value interface{}) *FolioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file or URL the error relates to.
func (e *FolioError) WithPath(path string) *FolioError {
	e.Path = path

	return e
}

// WithComponent adds component context.
func (e *FolioError) WithComponent(component string) *FolioError {
	e.Component = component

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FolioError {
	return &FolioError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewContentError creates an error for a malformed content document.
func NewContentError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeContent,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error. Network failures are retryable by
// the user, so they are recoverable.
func NewNetworkError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FolioError {
	return &FolioError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}

	return false
}

// IsType reports whether err is a FolioError of the given type.
func IsType(err error, errType ErrorType) bool {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Type == errType
	}

	return false
}

// Common error codes.
const (
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeContentParse     = "ERR_CONTENT_PARSE"
	ErrCodeContentInvalid   = "ERR_CONTENT_INVALID"
	ErrCodeUnsupportedType  = "ERR_UNSUPPORTED_FORMAT"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeRequestFailed    = "ERR_REQUEST_FAILED"
	ErrCodeBadStatus        = "ERR_BAD_STATUS"
	ErrCodeStoreFailed      = "ERR_STORE_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)
