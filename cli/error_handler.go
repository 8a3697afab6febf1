package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/luminashot/errors"
)

// Exit codes reported by the luminashot binary.
const (
	ExitOK       = 0
	ExitOther    = 1
	ExitQuery    = 2
	ExitSpawn    = 3
	ExitCapture  = 4
	ExitDispatch = 5
	ExitConfig   = 6
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch errors.GetCategory(err) {
	case errors.CategoryNone, errors.CategoryNotification:
		return ExitOK
	case errors.CategoryQuery:
		return ExitQuery
	case errors.CategorySpawn:
		return ExitSpawn
	case errors.CategoryCapture:
		return ExitCapture
	case errors.CategoryDispatch:
		return ExitDispatch
	case errors.CategoryConfig:
		return ExitConfig
	default:
		return ExitOther
	}
}

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a diagnostic for err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	shotErr, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "❌ Configuration file not found: %v\n", detail(shotErr, "path"))

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "❌ Invalid configuration: %v\n", cause(err, shotErr))
		fmt.Fprintf(h.Out, "Run 'luminashot config' to see the effective configuration.\n")

	case errors.ErrCodeQueryFailed:
		fmt.Fprintf(h.Out, "❌ Could not talk to Hyprland (%v)\n", detail(shotErr, "request"))
		fmt.Fprintf(h.Out, "Make sure Hyprland is running and HYPRLAND_INSTANCE_SIGNATURE is set.\n")

	case errors.ErrCodeSpawnFailed:
		fmt.Fprintf(h.Out, "❌ Could not %v %v: %v\n", detail(shotErr, "op"), detail(shotErr, "program"), cause(err, shotErr))

	case errors.ErrCodeSelectionAborted:
		fmt.Fprintf(h.Out, "❌ Selection aborted: %v\n", detail(shotErr, "reason"))

	case errors.ErrCodeBackendUnavailable:
		fmt.Fprintf(h.Out, "❌ Capture backend '%v' is not available. Install it or change capture.backend.\n", detail(shotErr, "backend"))

	case errors.ErrCodeEmptyRegion:
		fmt.Fprintf(h.Out, "❌ Nothing to capture: the selected region is empty\n")

	case errors.ErrCodeDispatchFailed:
		fmt.Fprintf(h.Out, "❌ Screenshot was taken but could not be delivered: %v\n", cause(err, shotErr))

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && shotErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", shotErr.ToJSON())
	}
	return err
}

func detail(e *errors.ShotError, key string) interface{} {
	if e == nil || e.Details[key] == nil {
		return "unknown"
	}
	return e.Details[key]
}

func cause(err error, e *errors.ShotError) interface{} {
	if e != nil && e.Cause != nil {
		return e.Cause
	}
	if e != nil {
		return e.Message
	}
	return err
}
