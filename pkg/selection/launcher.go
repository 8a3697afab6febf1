package selection

import (
	"context"

	"github.com/grovetools/luminashot/pkg/models"
)

// Candidate is one pre-defined box offered to the selection tool.
type Candidate struct {
	Label string
	Rect  models.Rect
}

// Request describes one selection attempt.
type Request struct {
	Mode       models.CaptureMode
	Candidates []Candidate
}

// Launcher starts interactive selection subprocesses.
type Launcher interface {
	Launch(ctx context.Context, req Request) (Process, error)
}

// Process is a running selection subprocess owned by one attempt.
type Process interface {
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Result returns what the process printed and how it exited. Only valid
	// after Done is closed.
	Result() Result
	// Terminate stops the process and waits for it to exit.
	Terminate() error
}

// Result is the raw output of a finished selection process.
type Result struct {
	Output string
	Err    error
}

// Inventory is the compositor query surface a window selection needs.
type Inventory interface {
	MonitorUnderCursor(ctx context.Context) (models.Monitor, error)
	ActiveWorkspaceWindows(ctx context.Context, monitor models.Monitor) (models.Workspace, []models.Window, error)
	Window(ctx context.Context, address string) (models.Window, error)
}
