// Package selection runs interactive selections that stay correct while the
// user moves between workspaces.
//
// A window selection is scoped to the windows of the active workspace. If
// the workspace changes while the selection tool is open, the attempt is
// abandoned and a new one is started against the new workspace.
package selection

import (
	"context"
	"fmt"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/sirupsen/logrus"
)

// Options wires a Session to its collaborators.
type Options struct {
	Launcher Launcher
	// Inventory and Events are only used by SelectWindow. A nil Events
	// channel means no restarts can happen.
	Inventory Inventory
	Events    <-chan models.Event
	// RefreshGeometry re-reads the chosen window after selection.
	RefreshGeometry bool
	Logger          *logrus.Entry
}

// Session owns at most one live selection process at a time.
type Session struct {
	launcher  Launcher
	inventory Inventory
	events    <-chan models.Event
	refresh   bool
	logger    *logrus.Entry

	state    State
	launches int
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		launcher:  opts.Launcher,
		inventory: opts.Inventory,
		events:    opts.Events,
		refresh:   opts.RefreshGeometry,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Launches returns how many selection processes were started.
func (s *Session) Launches() int {
	return s.launches
}

func (s *Session) transition(to State) {
	if s.state == to {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"from": s.state.String(),
		"to":   to.String(),
	}).Debug("Selection state changed")
	s.state = to
}

// snapshot is the inventory one attempt works against.
type snapshot struct {
	monitor   models.Monitor
	workspace models.Workspace
	windows   []models.Window
}

func (sn snapshot) candidates() []Candidate {
	out := make([]Candidate, 0, len(sn.windows))
	for _, w := range sn.windows {
		out = append(out, Candidate{Label: w.Address, Rect: w.Rect})
	}
	return out
}

func (sn snapshot) lookup(address string) (models.Window, bool) {
	for _, w := range sn.windows {
		if w.Address == address {
			return w, true
		}
	}
	return models.Window{}, false
}

// triggersRestart reports whether ev makes this snapshot stale.
func (sn snapshot) triggersRestart(ev models.Event) bool {
	tag := sn.workspace.ID
	switch ev.Kind {
	case models.EventWorkspaceChanged:
		return ev.To != tag && (ev.From == tag || ev.From == models.UnknownWorkspace)
	case models.EventMonitorFocusChanged:
		return ev.Monitor == sn.monitor.Name && ev.To != tag
	default:
		return false
	}
}

func (s *Session) takeSnapshot(ctx context.Context) (snapshot, error) {
	monitor, err := s.inventory.MonitorUnderCursor(ctx)
	if err != nil {
		return snapshot{}, err
	}
	ws, windows, err := s.inventory.ActiveWorkspaceWindows(ctx, monitor)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{monitor: monitor, workspace: ws, windows: windows}, nil
}

// SelectWindow lets the user pick a window on the active workspace of the
// monitor under the cursor. Query and spawn failures are returned as errors;
// every other ending is an Outcome.
func (s *Session) SelectWindow(ctx context.Context) (Outcome, error) {
	if s.inventory == nil {
		return Outcome{}, errors.New(errors.ErrCodeInternal, "window selection needs an inventory")
	}

	for attempt := 1; ; attempt++ {
		s.transition(StateLaunching)
		snap, err := s.takeSnapshot(ctx)
		if err != nil {
			s.transition(StateAborted)
			return Outcome{}, err
		}

		log := s.logger.WithFields(logrus.Fields{
			"attempt":   attempt,
			"monitor":   snap.monitor.Name,
			"workspace": snap.workspace.ID,
		})

		if len(snap.windows) == 0 {
			log.Info("No windows on active workspace, waiting for a workspace change")
			s.transition(StateWaitingForWindows)
			restart, outcome := s.awaitWindows(ctx, snap)
			if !restart {
				s.finish(outcome)
				return outcome, nil
			}
			s.transition(StateRestarting)
			continue
		}

		proc, err := s.launcher.Launch(ctx, Request{Mode: models.ModeWindow, Candidates: snap.candidates()})
		if err != nil {
			s.transition(StateAborted)
			return Outcome{}, err
		}
		s.launches++
		s.transition(StateAwaitingInput)
		log.WithField("windows", len(snap.windows)).Debug("Awaiting window selection")

		outcome, restart, err := s.race(ctx, proc, snap)
		if err != nil {
			s.transition(StateAborted)
			return Outcome{}, err
		}
		if restart {
			log.Info("Workspace changed during selection, restarting")
			s.transition(StateRestarting)
			continue
		}

		if outcome.Kind == Resolved && outcome.Window != nil {
			outcome = s.refreshGeometry(ctx, snap, outcome)
		}
		s.finish(outcome)
		return outcome, nil
	}
}

// race waits for the process, the next event or cancellation, whichever
// comes first.
func (s *Session) race(ctx context.Context, proc Process, snap snapshot) (Outcome, bool, error) {
	for {
		select {
		case <-proc.Done():
			// A queued workspace change wins over a completion that raced it.
			if s.drainForRestart(snap) {
				return Outcome{}, true, nil
			}
			return s.interpretWindow(proc.Result(), snap), false, nil

		case ev, ok := <-s.events:
			if !ok {
				s.streamClosed()
				continue
			}
			if !snap.triggersRestart(ev) {
				s.logger.WithField("event", ev.String()).Trace("Ignoring compositor event")
				continue
			}
			s.logger.WithField("event", ev.String()).Debug("Restart trigger received")
			if err := proc.Terminate(); err != nil {
				return Outcome{}, false, err
			}
			return Outcome{}, true, nil

		case <-ctx.Done():
			if err := proc.Terminate(); err != nil {
				return Outcome{}, false, err
			}
			return aborted(ctx.Err()), false, nil
		}
	}
}

// drainForRestart consumes already-queued events without blocking and
// reports whether any of them invalidates snap.
func (s *Session) drainForRestart(snap snapshot) bool {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.streamClosed()
				return false
			}
			if snap.triggersRestart(ev) {
				s.logger.WithField("event", ev.String()).Debug("Discarding selection made on a stale workspace")
				return true
			}
		default:
			return false
		}
	}
}

// awaitWindows blocks until a workspace change could bring windows into view.
func (s *Session) awaitWindows(ctx context.Context, snap snapshot) (bool, Outcome) {
	for {
		if s.events == nil {
			return false, aborted(ErrNoWindows)
		}
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.streamClosed()
				return false, aborted(ErrNoWindows)
			}
			if snap.triggersRestart(ev) {
				return true, Outcome{}
			}
		case <-ctx.Done():
			return false, aborted(ctx.Err())
		}
	}
}

func (s *Session) streamClosed() {
	s.logger.Warn("Compositor event stream closed, workspace changes will no longer restart the selection")
	s.events = nil
}

func (s *Session) interpretWindow(res Result, snap snapshot) Outcome {
	if res.Output == "" {
		return cancelled()
	}
	if res.Err != nil {
		return aborted(fmt.Errorf("selection process failed: %w", res.Err))
	}

	if w, ok := snap.lookup(res.Output); ok {
		return resolved(w.Rect, &w)
	}
	// Without -r support slurp may print a plain geometry.
	if rect, err := models.ParseRect(res.Output); err == nil && !rect.Empty() {
		return resolved(rect, nil)
	}
	return aborted(fmt.Errorf("unrecognized selection %q", res.Output))
}

// refreshGeometry swaps in the window's current rect when it is still on
// the tagged workspace.
func (s *Session) refreshGeometry(ctx context.Context, snap snapshot, outcome Outcome) Outcome {
	if !s.refresh {
		return outcome
	}

	fresh, err := s.inventory.Window(ctx, outcome.Window.Address)
	log := s.logger.WithField("address", outcome.Window.Address)
	switch {
	case err != nil:
		log.WithError(err).Debug("Could not refresh window geometry, keeping snapshot")
	case fresh.WorkspaceID != snap.workspace.ID:
		log.WithField("workspace", fresh.WorkspaceID).Debug("Window left the workspace, keeping snapshot geometry")
	case fresh.Rect.Empty():
		log.Debug("Window has no area, keeping snapshot geometry")
	default:
		outcome.Region = fresh.Rect
		outcome.Window = &fresh
	}
	return outcome
}

// SelectRegion lets the user drag a free region. Compositor events are never
// consulted.
func (s *Session) SelectRegion(ctx context.Context) (Outcome, error) {
	s.transition(StateLaunching)
	proc, err := s.launcher.Launch(ctx, Request{Mode: models.ModeRegion})
	if err != nil {
		s.transition(StateAborted)
		return Outcome{}, err
	}
	s.launches++
	s.transition(StateAwaitingInput)

	var outcome Outcome
	select {
	case <-proc.Done():
		outcome = interpretRegion(proc.Result())
	case <-ctx.Done():
		if err := proc.Terminate(); err != nil {
			s.transition(StateAborted)
			return Outcome{}, err
		}
		outcome = aborted(ctx.Err())
	}

	s.finish(outcome)
	return outcome, nil
}

func interpretRegion(res Result) Outcome {
	if res.Output == "" {
		return cancelled()
	}
	if res.Err != nil {
		return aborted(fmt.Errorf("selection process failed: %w", res.Err))
	}
	rect, err := models.ParseRect(res.Output)
	if err != nil {
		return aborted(err)
	}
	region, err := models.NewCaptureRegion(rect.X, rect.Y, rect.Width, rect.Height)
	if err != nil {
		return aborted(err)
	}
	return resolved(region, nil)
}

func (s *Session) finish(outcome Outcome) {
	switch outcome.Kind {
	case Resolved:
		s.transition(StateCompleted)
		s.logger.WithFields(logrus.Fields{
			"region":   outcome.Region.String(),
			"launches": s.launches,
		}).Debug("Selection resolved")
	case UserCancelled:
		s.transition(StateCancelled)
	default:
		s.transition(StateAborted)
		s.logger.WithError(outcome.Reason).Debug("Selection aborted")
	}
}
