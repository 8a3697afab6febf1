// Package output delivers captured image bytes to a file and/or the clipboard.
package output

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/paths"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	fileSuffix = "-luminashot"
	// maxCollisions bounds the -N suffix search in one directory.
	maxCollisions = 1000
)

// Options configures the dispatcher.
type Options struct {
	// Directory defaults to $XDG_PICTURES_DIR/Screenshots.
	Directory string
	// FilenameFormat is a Go time layout.
	FilenameFormat string
	// Format is the capture format: png, jpeg or ppm.
	Format     string
	Extension  string
	WlCopyPath string
	// Now is used for file names; time.Now when nil.
	Now func() time.Time
}

// Dispatcher runs the save and copy actions.
type Dispatcher struct {
	opts    Options
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts Options, exec command.Executor, logger *logrus.Entry) *Dispatcher {
	if opts.FilenameFormat == "" {
		opts.FilenameFormat = "2006-01-02_15-04-05"
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Extension == "" {
		opts.Extension = opts.Format
	}
	if opts.WlCopyPath == "" {
		opts.WlCopyPath = "wl-copy"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		opts:    opts,
		builder: command.NewSafeBuilderWithExecutor(exec),
		logger:  logger,
	}
}

// Result records the outcome of each requested action.
type Result struct {
	Mode    models.OutputMode
	Path    string
	SaveErr error
	CopyErr error
}

// Saved reports whether a file was written.
func (r Result) Saved() bool {
	return r.Mode.Saves() && r.SaveErr == nil
}

// Copied reports whether the clipboard was set.
func (r Result) Copied() bool {
	return r.Mode.Copies() && r.CopyErr == nil
}

// Succeeded reports whether at least one requested action worked.
func (r Result) Succeeded() bool {
	return r.Saved() || r.Copied()
}

// Err is a DISPATCH_FAILED error when every requested action failed.
func (r Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	return errors.DispatchFailed(string(r.Mode), stderrors.Join(r.SaveErr, r.CopyErr))
}

// Dispatch performs the actions mode asks for. With save+copy both run
// concurrently and one failing does not stop the other.
func (d *Dispatcher) Dispatch(ctx context.Context, mode models.OutputMode, data []byte) Result {
	res := Result{Mode: mode}

	// A plain errgroup.Group: no shared context, so a failed action never
	// cancels its sibling.
	var g errgroup.Group
	if mode.Saves() {
		g.Go(func() error {
			res.Path, res.SaveErr = d.Save(data)
			return res.SaveErr
		})
	}
	if mode.Copies() {
		g.Go(func() error {
			res.CopyErr = d.Copy(ctx, data)
			return res.CopyErr
		})
	}
	_ = g.Wait()

	if res.Succeeded() {
		if mode.Saves() && res.SaveErr != nil {
			d.logger.WithError(res.SaveErr).Warn("Saving the screenshot failed")
		}
		if mode.Copies() && res.CopyErr != nil {
			d.logger.WithError(res.CopyErr).Warn("Copying the screenshot to the clipboard failed")
		}
	}
	return res
}

// Directory returns the effective save directory.
func (d *Dispatcher) Directory() string {
	if d.opts.Directory != "" {
		return paths.ExpandHome(d.opts.Directory)
	}
	return paths.ScreenshotsDir()
}

// Save writes data to a new file in the save directory. The file appears
// atomically: it is written and synced under a temporary name first.
func (d *Dispatcher) Save(data []byte) (string, error) {
	dir := d.Directory()
	if dir == "" {
		return "", errors.DispatchFailed("save", fmt.Errorf("no save directory could be determined"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.DispatchFailed("save", err).WithDetail("directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".luminashot-*.tmp")
	if err != nil {
		return "", errors.DispatchFailed("save", err).WithDetail("directory", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.DispatchFailed("save", err).WithDetail("path", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", errors.DispatchFailed("save", err).WithDetail("path", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.DispatchFailed("save", err).WithDetail("path", tmpPath)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", errors.DispatchFailed("save", err).WithDetail("path", tmpPath)
	}

	base := d.opts.Now().Format(d.opts.FilenameFormat) + fileSuffix
	for i := 0; i < maxCollisions; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		final := filepath.Join(dir, name+"."+d.opts.Extension)

		err := publish(tmpPath, final)
		if err == nil {
			d.logger.WithFields(logrus.Fields{
				"path":  final,
				"bytes": len(data),
			}).Debug("Saved screenshot")
			return final, nil
		}
		if !stderrors.Is(err, os.ErrExist) {
			return "", errors.DispatchFailed("save", err).WithDetail("path", final)
		}
	}
	return "", errors.DispatchFailed("save", fmt.Errorf("too many files named %s", base)).WithDetail("directory", dir)
}

// publish moves tmp to final without replacing an existing file.
func publish(tmp, final string) error {
	err := os.Link(tmp, final)
	if err == nil {
		return nil
	}
	if stderrors.Is(err, os.ErrExist) {
		return err
	}
	// Filesystems without hard links: check, then rename.
	if _, statErr := os.Lstat(final); statErr == nil {
		return os.ErrExist
	}
	return os.Rename(tmp, final)
}

// MimeType returns the clipboard type for the capture format.
func (d *Dispatcher) MimeType() string {
	switch d.opts.Format {
	case "ppm":
		return "image/x-portable-pixmap"
	default:
		return "image/" + d.opts.Format
	}
}

// Copy places data on the Wayland clipboard through wl-copy.
func (d *Dispatcher) Copy(ctx context.Context, data []byte) error {
	cmd, err := d.builder.Build(ctx, d.opts.WlCopyPath, "--type", d.MimeType())
	if err != nil {
		return errors.DispatchFailed("copy", err)
	}
	defer cmd.Release()

	execCmd := cmd.Exec()
	execCmd.Stdin = bytes.NewReader(data)
	// wl-copy forks a child that keeps serving the selection; it must not
	// inherit pipes we would wait on.
	execCmd.Stdout = nil
	execCmd.Stderr = nil

	if err := execCmd.Run(); err != nil {
		return errors.DispatchFailed("copy", err).WithDetail("program", d.opts.WlCopyPath)
	}

	d.logger.WithFields(logrus.Fields{
		"type":  d.MimeType(),
		"bytes": len(data),
	}).Debug("Copied screenshot to clipboard")
	return nil
}
