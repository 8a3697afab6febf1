// Package notify sends desktop notifications through notify-send.
package notify

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/output"
	"github.com/sirupsen/logrus"
)

const (
	appName = "luminashot"
	// DefaultIcon is used when no file was saved.
	DefaultIcon = "image-x-generic"
	// DefaultTimeout bounds one notify-send call.
	DefaultTimeout = 5 * time.Second
)

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// Options configures the emitter.
type Options struct {
	Path    string
	Timeout time.Duration
}

// Emitter runs notify-send.
type Emitter struct {
	opts    Options
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// NewEmitter creates an emitter.
func NewEmitter(opts Options, exec command.Executor, logger *logrus.Entry) *Emitter {
	if opts.Path == "" {
		opts.Path = "notify-send"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Emitter{
		opts:    opts,
		builder: command.NewSafeBuilderWithExecutor(exec),
		logger:  logger,
	}
}

// Args returns the notify-send arguments for n.
func (e *Emitter) Args(n Notification) []string {
	icon := n.Icon
	if icon == "" {
		icon = DefaultIcon
	}
	return []string{"-a", appName, "-i", icon, n.Title, n.Body}
}

// Notify sends n. Errors carry NOTIFY_FAILED and are never fatal.
func (e *Emitter) Notify(ctx context.Context, n Notification) error {
	cmd, err := e.builder.Build(ctx, e.opts.Path, e.Args(n)...)
	if err != nil {
		return errors.NotifyFailed(err)
	}
	cmd.WithTimeout(e.opts.Timeout)
	defer cmd.Release()

	var stderr bytes.Buffer
	execCmd := cmd.Exec()
	execCmd.Stderr = &stderr

	if err := execCmd.Run(); err != nil {
		notifyErr := errors.NotifyFailed(err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			notifyErr = notifyErr.WithDetail("stderr", msg)
		}
		return notifyErr
	}

	e.logger.WithField("title", n.Title).Debug("Notification sent")
	return nil
}

// CaptureNotification describes a dispatched capture.
func CaptureNotification(mode models.CaptureMode, res output.Result, size int) Notification {
	var lines []string
	if res.Saved() {
		lines = append(lines, "Saved to "+res.Path)
	}
	if res.Copied() {
		lines = append(lines, "Copied to clipboard")
	}
	lines = append(lines, humanize.Bytes(uint64(size)))

	icon := DefaultIcon
	if res.Saved() {
		icon = res.Path
	}

	return Notification{
		Title: "Luminashot - " + mode.Title() + " Mode",
		Body:  strings.Join(lines, "\n"),
		Icon:  icon,
	}
}
