package models

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*CaptureMode)(nil)
	_ pflag.Value = (*OutputMode)(nil)
)

// CaptureMode selects how the capture target is resolved.
type CaptureMode string

const (
	ModeMonitor CaptureMode = "monitor"
	ModeWindow  CaptureMode = "window"
	ModeRegion  CaptureMode = "region"
)

// CaptureModes lists the accepted modes in help order.
var CaptureModes = []CaptureMode{ModeMonitor, ModeWindow, ModeRegion}

// String implements pflag.Value.
func (m *CaptureMode) String() string { return string(*m) }

// Set implements pflag.Value.
func (m *CaptureMode) Set(v string) error {
	for _, mode := range CaptureModes {
		if strings.EqualFold(v, string(mode)) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("must be one of monitor, window, region")
}

// Type implements pflag.Value.
func (m *CaptureMode) Type() string { return "mode" }

// Title returns the capitalized mode name for user-facing text.
func (m CaptureMode) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// OutputMode selects what happens to captured bytes.
type OutputMode string

const (
	OutputSave        OutputMode = "save"
	OutputCopy        OutputMode = "copy"
	OutputSaveAndCopy OutputMode = "save+copy"
)

// String implements pflag.Value.
func (o *OutputMode) String() string { return string(*o) }

// Set implements pflag.Value.
func (o *OutputMode) Set(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "save":
		*o = OutputSave
	case "copy":
		*o = OutputCopy
	case "save+copy", "copy+save", "both":
		*o = OutputSaveAndCopy
	default:
		return fmt.Errorf("must be one of save, copy, save+copy")
	}
	return nil
}

// Type implements pflag.Value.
func (o *OutputMode) Type() string { return "output" }

// Saves reports whether the mode writes a file.
func (o OutputMode) Saves() bool { return o == OutputSave || o == OutputSaveAndCopy }

// Copies reports whether the mode writes the clipboard.
func (o OutputMode) Copies() bool { return o == OutputCopy || o == OutputSaveAndCopy }
