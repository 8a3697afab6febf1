package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Compositor IPC errors
	ErrCodeQueryFailed ErrorCode = "QUERY_FAILED"

	// Subprocess lifecycle errors
	ErrCodeSpawnFailed      ErrorCode = "SPAWN_FAILED"
	ErrCodeSelectionAborted ErrorCode = "SELECTION_ABORTED"

	// Capture errors
	ErrCodeBackendUnavailable ErrorCode = "CAPTURE_BACKEND_UNAVAILABLE"
	ErrCodeEmptyRegion        ErrorCode = "CAPTURE_EMPTY_REGION"
	ErrCodeBackendFailed      ErrorCode = "CAPTURE_BACKEND_FAILED"

	// Output errors
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
	ErrCodeNotifyFailed   ErrorCode = "NOTIFY_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Category groups error codes into the classes the run loop reacts to.
type Category string

const (
	CategoryNone         Category = ""
	CategoryQuery        Category = "QueryError"
	CategorySpawn        Category = "SpawnError"
	CategoryCapture      Category = "CaptureError"
	CategoryDispatch     Category = "DispatchError"
	CategoryNotification Category = "NotificationError"
	CategoryConfig       Category = "ConfigError"
	CategoryOther        Category = "Error"
)

// ShotError represents a structured error with context
type ShotError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ShotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ShotError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ShotError) WithDetail(key string, value interface{}) *ShotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *ShotError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ShotError
func New(code ErrorCode, message string) *ShotError {
	return &ShotError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ShotError
func Wrap(err error, code ErrorCode, message string) *ShotError {
	return &ShotError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific ShotError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	shotErr, ok := err.(*ShotError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return shotErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	shotErr, ok := err.(*ShotError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return shotErr.Code
}

// As returns the outermost ShotError in the chain, if any.
func As(err error) (*ShotError, bool) {
	for err != nil {
		if shotErr, ok := err.(*ShotError); ok {
			return shotErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// GetCategory maps an error to its taxonomy class.
func GetCategory(err error) Category {
	if err == nil {
		return CategoryNone
	}

	switch GetCode(err) {
	case ErrCodeQueryFailed:
		return CategoryQuery
	case ErrCodeSpawnFailed, ErrCodeSelectionAborted:
		return CategorySpawn
	case ErrCodeBackendUnavailable, ErrCodeEmptyRegion, ErrCodeBackendFailed:
		return CategoryCapture
	case ErrCodeDispatchFailed:
		return CategoryDispatch
	case ErrCodeNotifyFailed:
		return CategoryNotification
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigValidation:
		return CategoryConfig
	default:
		return CategoryOther
	}
}

// IsFatal reports whether an error must abort the run.
// Notification failures never are.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCategory(err) != CategoryNotification
}
