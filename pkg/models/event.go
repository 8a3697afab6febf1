package models

import "fmt"

// EventKind tags a compositor event.
type EventKind int

const (
	EventOther EventKind = iota
	EventWorkspaceChanged
	EventMonitorFocusChanged
)

func (k EventKind) String() string {
	switch k {
	case EventWorkspaceChanged:
		return "workspace-changed"
	case EventMonitorFocusChanged:
		return "monitor-focus-changed"
	default:
		return "other"
	}
}

// UnknownWorkspace marks a workspace ID the event source could not determine.
const UnknownWorkspace = 0

// Event is one compositor lifecycle notification.
type Event struct {
	Kind    EventKind
	From    int    // previously active workspace, UnknownWorkspace if not tracked
	To      int    // newly active workspace
	Monitor string // monitor name for MonitorFocusChanged
	Raw     string // original line, for logging
}

func (e Event) String() string {
	switch e.Kind {
	case EventWorkspaceChanged:
		return fmt.Sprintf("%s %d->%d", e.Kind, e.From, e.To)
	case EventMonitorFocusChanged:
		return fmt.Sprintf("%s %s ws=%d", e.Kind, e.Monitor, e.To)
	default:
		return fmt.Sprintf("%s %q", e.Kind, e.Raw)
	}
}
