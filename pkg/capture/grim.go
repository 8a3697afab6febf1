package capture

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/errors"
)

// Grim captures through grim(1), writing the image to stdout.
type Grim struct {
	path    string
	format  string
	quality int
	scale   float64
	cursor  bool
	builder *command.SafeBuilder
}

// NewGrim creates a grim backend from the capture settings.
func NewGrim(cfg config.CaptureConfig, exec command.Executor) *Grim {
	path := cfg.GrimPath
	if path == "" {
		path = "grim"
	}
	format := cfg.Format
	if format == "" {
		format = "png"
	}
	return &Grim{
		path:    path,
		format:  format,
		quality: cfg.Quality,
		scale:   cfg.Scale,
		cursor:  cfg.Cursor,
		builder: command.NewSafeBuilderWithExecutor(exec),
	}
}

func (g *Grim) Name() string { return "grim" }

func (g *Grim) Available() error {
	_, err := g.builder.LookPath(g.path)
	return err
}

// Args returns the grim arguments for target.
func (g *Grim) Args(target Target) ([]string, error) {
	args := []string{"-t", g.format}
	if g.format == "jpeg" && g.quality > 0 {
		args = append(args, "-q", strconv.Itoa(g.quality))
	}
	if g.scale > 0 {
		args = append(args, "-s", strconv.FormatFloat(g.scale, 'f', -1, 64))
	}
	if g.cursor {
		args = append(args, "-c")
	}

	if target.Output != "" {
		if err := g.builder.Validate("outputName", target.Output); err != nil {
			return nil, err
		}
		args = append(args, "-o", target.Output)
	} else {
		geometry := target.Rect.String()
		if err := g.builder.Validate("geometry", geometry); err != nil {
			return nil, err
		}
		args = append(args, "-g", geometry)
	}

	return append(args, "-"), nil
}

func (g *Grim) Capture(ctx context.Context, target Target) ([]byte, error) {
	args, err := g.Args(target)
	if err != nil {
		return nil, errors.BackendFailed(g.Name(), fmt.Errorf("invalid capture target: %w", err))
	}

	cmd, err := g.builder.Build(ctx, g.path, args...)
	if err != nil {
		return nil, errors.BackendUnavailable(g.Name(), err)
	}
	defer cmd.Release()

	execCmd := cmd.Exec()
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	if err := execCmd.Run(); err != nil {
		shotErr := errors.BackendFailed(g.Name(), err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			shotErr = shotErr.WithDetail("stderr", msg)
		}
		return nil, shotErr
	}
	return stdout.Bytes(), nil
}
