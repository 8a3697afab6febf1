package selection

import (
	"errors"
	"fmt"

	shoterrors "github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
)

// State is the lifecycle position of a selection session.
type State int

const (
	StateIdle State = iota
	StateLaunching
	StateAwaitingInput
	StateWaitingForWindows
	StateRestarting
	StateCompleted
	StateCancelled
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLaunching:
		return "launching"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateWaitingForWindows:
		return "waiting-for-windows"
	case StateRestarting:
		return "restarting"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OutcomeKind tags how a selection ended.
type OutcomeKind int

const (
	Resolved OutcomeKind = iota
	UserCancelled
	Aborted
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case UserCancelled:
		return "cancelled"
	default:
		return "aborted"
	}
}

// Outcome is the terminal result of a selection.
type Outcome struct {
	Kind   OutcomeKind
	Region models.Rect
	// Window is set when the region came from a window candidate.
	Window *models.Window
	// Reason explains an Aborted outcome.
	Reason error
}

// ErrNoWindows is the reason a window selection aborts when the active
// workspace is empty and no workspace change can follow.
var ErrNoWindows = errors.New("no windows on active workspace")

func resolved(region models.Rect, window *models.Window) Outcome {
	return Outcome{Kind: Resolved, Region: region, Window: window}
}

func cancelled() Outcome {
	return Outcome{Kind: UserCancelled}
}

func aborted(reason error) Outcome {
	return Outcome{Kind: Aborted, Reason: reason}
}

// Err returns the error an Aborted outcome stands for, nil otherwise.
func (o Outcome) Err() error {
	if o.Kind != Aborted {
		return nil
	}
	reason := "unknown reason"
	if o.Reason != nil {
		reason = o.Reason.Error()
	}
	return shoterrors.SelectionAborted(reason)
}
