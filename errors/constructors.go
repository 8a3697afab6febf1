package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *ShotError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ShotError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// QueryFailed creates a compositor query error
func QueryFailed(request string, err error) *ShotError {
	return Wrap(err, ErrCodeQueryFailed, fmt.Sprintf("compositor query failed: %s", request)).
		WithDetail("request", request)
}

// SpawnFailed creates a subprocess start/terminate error
func SpawnFailed(program string, op string, err error) *ShotError {
	return Wrap(err, ErrCodeSpawnFailed, fmt.Sprintf("could not %s %s", op, program)).
		WithDetail("program", program).
		WithDetail("op", op)
}

// SelectionAborted creates an error for a selection that ended without a result
func SelectionAborted(reason string) *ShotError {
	return New(ErrCodeSelectionAborted, fmt.Sprintf("selection aborted: %s", reason)).
		WithDetail("reason", reason)
}

// BackendUnavailable creates a capture backend unavailable error
func BackendUnavailable(backend string, err error) *ShotError {
	return Wrap(err, ErrCodeBackendUnavailable, fmt.Sprintf("capture backend '%s' is not available", backend)).
		WithDetail("backend", backend)
}

// EmptyRegion creates an error for a zero-area capture region
func EmptyRegion(width, height int) *ShotError {
	return New(ErrCodeEmptyRegion, fmt.Sprintf("capture region is empty (%dx%d)", width, height)).
		WithDetail("width", width).
		WithDetail("height", height)
}

// BackendFailed creates a capture backend failure error
func BackendFailed(backend string, err error) *ShotError {
	shotErr := Wrap(err, ErrCodeBackendFailed, fmt.Sprintf("capture backend '%s' failed", backend)).
		WithDetail("backend", backend)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		shotErr = shotErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return shotErr
}

// DispatchFailed creates an output action failure error
func DispatchFailed(action string, err error) *ShotError {
	return Wrap(err, ErrCodeDispatchFailed, fmt.Sprintf("%s failed", action)).
		WithDetail("action", action)
}

// NotifyFailed creates a notification failure error
func NotifyFailed(err error) *ShotError {
	shotErr := Wrap(err, ErrCodeNotifyFailed, "notification failed")
	if exitErr, ok := err.(*exec.ExitError); ok {
		shotErr = shotErr.WithDetail("exitCode", exitErr.ExitCode())
	}
	return shotErr
}
