package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error. Recoverable types (NoData,
// Dependency, Malformed, Timeout) are absorbed by the deterministic
// fallback path; Validation surfaces to the caller unchanged.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNoData     ErrorType = "no_data"
	ErrorTypeDependency ErrorType = "dependency"
	ErrorTypeMalformed  ErrorType = "malformed_response"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError carries the type, a stable code and optional context alongside
// the wrapped cause.
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
	Context  map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches AppErrors by type and code so sentinel comparisons work.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext attaches a key/value pair for structured logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields.
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// New creates a new AppError.
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message, Internal: err}
}

// Recoverable reports whether err may be absorbed by the deterministic
// fallback generator instead of surfacing to the caller.
func Recoverable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case ErrorTypeNoData, ErrorTypeDependency, ErrorTypeMalformed, ErrorTypeTimeout:
		return true
	}
	return false
}

// Predefined errors
var (
	ErrNoData            = New(ErrorTypeNoData, "NO_DATA", "no readings available")
	ErrInvalidInput      = New(ErrorTypeValidation, "INVALID_INPUT", "invalid input provided")
	ErrQuestNotFound     = New(ErrorTypeNotFound, "QUEST_NOT_FOUND", "quest not found")
	ErrMalformedResponse = New(ErrorTypeMalformed, "MALFORMED_RESPONSE", "model response was not parseable")
	ErrTimeout           = New(ErrorTypeTimeout, "TIMEOUT", "operation timed out")
	ErrInternalServer    = New(ErrorTypeInternal, "INTERNAL", "internal server error")
)

// NewValidationError reports a caller mistake that must not be recovered.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "database operation failed")
}

// NewDependencyError wraps an LLM or retrieval failure.
func NewDependencyError(err error, dep string) *AppError {
	return Wrap(err, ErrorTypeDependency, "DEPENDENCY_FAILURE", fmt.Sprintf("%s unavailable", dep)).
		WithContext("dependency", dep)
}

// NewTimeoutError reports an outbound call that exceeded its deadline.
func NewTimeoutError(operation string) *AppError {
	return New(ErrorTypeTimeout, "TIMEOUT", fmt.Sprintf("%s operation timed out", operation)).
		WithContext("operation", operation)
}
