// Package app runs one luminashot invocation: resolve a target, capture it,
// deliver the bytes and announce the result.
package app

import (
	"context"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/logging"
	"github.com/grovetools/luminashot/pkg/capture"
	"github.com/grovetools/luminashot/pkg/hyprland"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/notify"
	"github.com/grovetools/luminashot/pkg/output"
	"github.com/grovetools/luminashot/pkg/profiling"
	"github.com/grovetools/luminashot/pkg/selection"
	"github.com/sirupsen/logrus"
)

// Request is what the user asked for.
type Request struct {
	Mode   models.CaptureMode
	Output models.OutputMode
}

// EventSource is a subscription to compositor events.
type EventSource interface {
	Events() <-chan models.Event
	Close() error
}

// Capturer turns a target into encoded image bytes.
type Capturer interface {
	CaptureRegion(ctx context.Context, rect models.Rect) ([]byte, error)
	CaptureMonitor(ctx context.Context, monitor models.Monitor) ([]byte, error)
}

// Dispatcher delivers captured bytes.
type Dispatcher interface {
	Dispatch(ctx context.Context, mode models.OutputMode, data []byte) output.Result
}

// Notifier announces a finished capture.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// Deps are the collaborators of a run. Inventory and Subscribe are only
// used by the modes that need the compositor.
type Deps struct {
	Inventory  func() (selection.Inventory, error)
	Subscribe  func(ctx context.Context) (EventSource, error)
	Launcher   selection.Launcher
	Capturer   Capturer
	Dispatcher Dispatcher
	// Notifier is nil when notifications are disabled.
	Notifier        Notifier
	RefreshGeometry bool
}

// Report describes a completed run.
type Report struct {
	Mode      models.CaptureMode
	Outcome   selection.OutcomeKind
	Region    models.Rect
	Monitor   string
	Bytes     int
	Output    *output.Result
	Notified  bool
	Launches  int
	Cancelled bool
}

// App runs capture requests.
type App struct {
	deps   Deps
	logger *logrus.Entry
}

// New wires the production collaborators from cfg.
func New(cfg *config.Config, exec command.Executor) (*App, error) {
	engine, err := capture.New(cfg.Capture, exec, logging.NewLogger("capture"))
	if err != nil {
		return nil, err
	}
	logging.NewLogger("app").WithField("backend", engine.Backend().Name()).Debug("Capture backend selected")

	hyprOpts := hyprland.Options{
		InstanceSignature: cfg.Hyprland.InstanceSignature,
		RuntimeDir:        cfg.Hyprland.RuntimeDir,
	}

	var client *hyprland.Client
	getClient := func() (*hyprland.Client, error) {
		if client != nil {
			return client, nil
		}
		c, err := hyprland.NewClient(hyprOpts)
		if err != nil {
			return nil, err
		}
		logging.NewLogger("app").WithField("socket_dir", c.SocketDir()).Debug("Using Hyprland instance")
		client = c
		return client, nil
	}

	deps := Deps{
		Inventory: func() (selection.Inventory, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Subscribe: func(ctx context.Context) (EventSource, error) {
			c, err := getClient()
			if err != nil {
				return nil, err
			}
			return c.Subscribe(ctx)
		},
		Launcher: selection.NewSlurp(selection.SlurpOptions{
			Path:        cfg.Selection.SlurpPath,
			Background:  cfg.Selection.Background,
			BorderColor: cfg.Selection.BorderColor,
			GracePeriod: cfg.Selection.GracePeriod,
		}, exec, logging.NewLogger("selection")),
		Capturer: engine,
		Dispatcher: output.NewDispatcher(output.Options{
			Directory:      cfg.Output.Directory,
			FilenameFormat: cfg.Output.FilenameFormat,
			Format:         cfg.Capture.Format,
			Extension:      cfg.FileExtension(),
			WlCopyPath:     cfg.Output.WlCopyPath,
		}, exec, logging.NewLogger("output")),
		RefreshGeometry: cfg.RefreshGeometry(),
	}
	if cfg.NotificationsEnabled() {
		deps.Notifier = notify.NewEmitter(notify.Options{
			Path:    cfg.Notify.Path,
			Timeout: cfg.Notify.Timeout,
		}, exec, logging.NewLogger("notify"))
	}

	return NewWithDeps(deps), nil
}

// NewWithDeps creates an app around explicit collaborators.
func NewWithDeps(deps Deps) *App {
	return &App{deps: deps, logger: logging.NewLogger("app")}
}

// Run performs one capture. A user cancellation is a successful run with
// Report.Cancelled set; nothing is captured, dispatched or announced.
func (a *App) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Mode == "" {
		req.Mode = models.ModeMonitor
	}
	if req.Output == "" {
		req.Output = models.OutputSave
	}

	log := a.logger.WithFields(logrus.Fields{
		"mode":   string(req.Mode),
		"output": string(req.Output),
	})
	log.Debug("Starting capture")

	report := &Report{Mode: req.Mode}

	var (
		data []byte
		err  error
	)
	switch req.Mode {
	case models.ModeMonitor:
		data, err = a.captureMonitor(ctx, report)
	case models.ModeWindow:
		data, err = a.captureSelection(ctx, report, true)
	case models.ModeRegion:
		data, err = a.captureSelection(ctx, report, false)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown capture mode: "+string(req.Mode))
	}
	if err != nil {
		return nil, err
	}
	if report.Cancelled {
		log.Info("Selection cancelled")
		return report, nil
	}
	report.Bytes = len(data)

	span := profiling.Start("dispatch")
	res := a.deps.Dispatcher.Dispatch(ctx, req.Output, data)
	span.Stop()
	report.Output = &res
	if err := res.Err(); err != nil {
		return nil, err
	}

	if a.deps.Notifier != nil {
		n := notify.CaptureNotification(req.Mode, res, len(data))
		span := profiling.Start("notify")
		err := a.deps.Notifier.Notify(ctx, n)
		span.Stop()
		if err != nil {
			log.WithError(err).Warn("Could not send notification")
		} else {
			report.Notified = true
		}
	}

	log.WithFields(logrus.Fields{
		"region": report.Region.String(),
		"bytes":  report.Bytes,
		"path":   res.Path,
	}).Debug("Capture complete")
	return report, nil
}

func (a *App) captureMonitor(ctx context.Context, report *Report) ([]byte, error) {
	inv, err := a.deps.Inventory()
	if err != nil {
		return nil, err
	}
	span := profiling.Start("query")
	monitor, err := inv.MonitorUnderCursor(ctx)
	span.Stop()
	if err != nil {
		return nil, err
	}
	report.Outcome = selection.Resolved
	report.Region = monitor.Rect
	report.Monitor = monitor.Name

	defer profiling.Start("capture").Stop()
	return a.deps.Capturer.CaptureMonitor(ctx, monitor)
}

func (a *App) captureSelection(ctx context.Context, report *Report, window bool) ([]byte, error) {
	opts := selection.Options{
		Launcher:        a.deps.Launcher,
		RefreshGeometry: a.deps.RefreshGeometry,
		Logger:          logging.NewLogger("selection"),
	}

	var (
		session *selection.Session
		outcome selection.Outcome
		err     error
	)
	span := profiling.Start("select")
	if window {
		opts.Inventory, err = a.deps.Inventory()
		if err != nil {
			return nil, err
		}

		var stream EventSource
		stream, err = a.deps.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		defer stream.Close()
		opts.Events = stream.Events()

		session = selection.NewSession(opts)
		outcome, err = session.SelectWindow(ctx)
	} else {
		session = selection.NewSession(opts)
		outcome, err = session.SelectRegion(ctx)
	}
	span.Stop()
	report.Launches = session.Launches()
	if err != nil {
		return nil, err
	}

	report.Outcome = outcome.Kind
	switch outcome.Kind {
	case selection.UserCancelled:
		report.Cancelled = true
		return nil, nil
	case selection.Aborted:
		return nil, outcome.Err()
	}

	report.Region = outcome.Region
	defer profiling.Start("capture").Stop()
	return a.deps.Capturer.CaptureRegion(ctx, outcome.Region)
}
