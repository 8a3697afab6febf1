// Package capture turns a region or monitor into encoded image bytes.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/sirupsen/logrus"
)

// Target is what a backend captures. Output, when set, names a whole
// monitor; Rect is always set.
type Target struct {
	Rect   models.Rect
	Output string
}

// Backend produces image bytes.
type Backend interface {
	Name() string
	// Available reports why the backend cannot be used, or nil.
	Available() error
	Capture(ctx context.Context, target Target) ([]byte, error)
}

// Engine validates targets and delegates to one backend.
type Engine struct {
	backend Backend
	logger  *logrus.Entry
}

// NewEngine creates an engine around backend.
func NewEngine(backend Backend, logger *logrus.Entry) *Engine {
	return &Engine{backend: backend, logger: logger}
}

// New builds the engine selected by capture.backend.
func New(cfg config.CaptureConfig, exec command.Executor, logger *logrus.Entry) (*Engine, error) {
	switch cfg.Backend {
	case "", "grim":
		return NewEngine(NewGrim(cfg, exec), logger), nil
	case "x11":
		return NewEngine(NewX11(), logger), nil
	default:
		return nil, errors.BackendUnavailable(cfg.Backend, fmt.Errorf("unknown backend"))
	}
}

// Backend returns the engine's backend.
func (e *Engine) Backend() Backend {
	return e.backend
}

// CaptureRegion captures an absolute logical rectangle.
func (e *Engine) CaptureRegion(ctx context.Context, rect models.Rect) ([]byte, error) {
	return e.capture(ctx, Target{Rect: rect})
}

// CaptureMonitor captures a whole monitor.
func (e *Engine) CaptureMonitor(ctx context.Context, monitor models.Monitor) ([]byte, error) {
	return e.capture(ctx, Target{Rect: monitor.Rect, Output: monitor.Name})
}

func (e *Engine) capture(ctx context.Context, target Target) ([]byte, error) {
	if target.Rect.Empty() {
		return nil, errors.EmptyRegion(target.Rect.Width, target.Rect.Height)
	}
	if err := e.backend.Available(); err != nil {
		return nil, errors.BackendUnavailable(e.backend.Name(), err)
	}

	start := time.Now()
	data, err := e.backend.Capture(ctx, target)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.BackendFailed(e.backend.Name(), err)
	}
	if len(data) == 0 {
		return nil, errors.BackendFailed(e.backend.Name(), fmt.Errorf("backend produced no data"))
	}

	e.logger.WithFields(logrus.Fields{
		"backend":  e.backend.Name(),
		"target":   target.Rect.String(),
		"output":   target.Output,
		"bytes":    len(data),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Captured")
	return data, nil
}
