package selection

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/process"
	"github.com/sirupsen/logrus"
)

// SlurpOptions configures the slurp launcher.
type SlurpOptions struct {
	Path        string
	Background  string
	BorderColor string
	GracePeriod time.Duration
}

// Slurp launches slurp(1) for interactive selection.
type Slurp struct {
	opts    SlurpOptions
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// NewSlurp creates a launcher running slurp through exec.
func NewSlurp(opts SlurpOptions, exec command.Executor, logger *logrus.Entry) *Slurp {
	if opts.Path == "" {
		opts.Path = "slurp"
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = process.DefaultGracePeriod
	}
	return &Slurp{
		opts:    opts,
		builder: command.NewSafeBuilderWithExecutor(exec),
		logger:  logger,
	}
}

// Args returns the slurp arguments for a request.
func (s *Slurp) Args(req Request) []string {
	var args []string
	if req.Mode == models.ModeWindow {
		// Restrict to the offered boxes and print the chosen box's label.
		args = append(args, "-r")
	}
	if s.opts.Background != "" {
		args = append(args, "-b", s.opts.Background)
	}
	if s.opts.BorderColor != "" {
		args = append(args, "-c", s.opts.BorderColor)
	}
	if req.Mode == models.ModeWindow {
		args = append(args, "-f", "%l")
	}
	return args
}

// Launch starts slurp in its own process group with the candidates on stdin.
func (s *Slurp) Launch(ctx context.Context, req Request) (Process, error) {
	// The session terminates slurp itself; a cancelled ctx must not kill it
	// behind the session's back.
	cmd, err := s.builder.Build(context.WithoutCancel(ctx), s.opts.Path, s.Args(req)...)
	if err != nil {
		return nil, errors.SpawnFailed(s.opts.Path, "start", err)
	}
	cmd.WithTimeout(0)

	execCmd := cmd.Exec()
	var stdin strings.Builder
	for _, c := range req.Candidates {
		stdin.WriteString(c.Rect.String())
		stdin.WriteString(" ")
		stdin.WriteString(c.Label)
		stdin.WriteString("\n")
	}
	execCmd.Stdin = strings.NewReader(stdin.String())

	p := &slurpProcess{
		done:  make(chan struct{}),
		grace: s.opts.GracePeriod,
		cmd:   cmd,
	}
	execCmd.Stdout = &p.stdout
	execCmd.Stderr = &p.stderr
	process.SetProcessGroup(execCmd)

	if err := execCmd.Start(); err != nil {
		cmd.Release()
		return nil, errors.SpawnFailed(s.opts.Path, "start", err)
	}
	p.pid = execCmd.Process.Pid

	s.logger.WithFields(logrus.Fields{
		"pid":        p.pid,
		"mode":       req.Mode.String(),
		"candidates": len(req.Candidates),
	}).Debug("Started selection process")

	go func() {
		p.err = execCmd.Wait()
		cmd.Release()
		close(p.done)
	}()
	return p, nil
}

type slurpProcess struct {
	pid    int
	grace  time.Duration
	cmd    *command.Command
	stdout bytes.Buffer
	stderr bytes.Buffer
	err    error
	done   chan struct{}
}

func (p *slurpProcess) Done() <-chan struct{} {
	return p.done
}

func (p *slurpProcess) Result() Result {
	<-p.done
	res := Result{Output: strings.TrimSpace(p.stdout.String()), Err: p.err}
	if p.err != nil && p.stderr.Len() > 0 {
		res.Err = errors.Wrap(p.err, errors.ErrCodeSpawnFailed, strings.TrimSpace(p.stderr.String()))
	}
	return res
}

func (p *slurpProcess) Terminate() error {
	if err := process.TerminateGroup(p.pid, p.done, p.grace); err != nil {
		return errors.SpawnFailed(p.cmd.Name(), "terminate", err)
	}
	return nil
}
