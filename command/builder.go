package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

var (
	geometryRegex   = regexp.MustCompile(`^-?\d+,-?\d+ \d+x\d+$`)
	outputNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	if exec == nil {
		exec = &RealExecutor{}
	}
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"geometry":   validateGeometry,
		"outputName": validateOutputName,
		"executable": validateExecutable,
		"fileName":   validateFileName,
	}
}

// validateGeometry ensures a geometry is in the "X,Y WxH" form grim accepts
func validateGeometry(g string) error {
	if g == "" {
		return fmt.Errorf("geometry cannot be empty")
	}
	if !geometryRegex.MatchString(g) {
		return fmt.Errorf("invalid geometry: %q (expected \"X,Y WxH\")", g)
	}
	return nil
}

// validateOutputName ensures monitor names are safe to pass as arguments
func validateOutputName(name string) error {
	if name == "" {
		return fmt.Errorf("output name cannot be empty")
	}
	if !outputNameRegex.MatchString(name) {
		return fmt.Errorf("invalid output name: %s", name)
	}
	return nil
}

// validateExecutable ensures a configured program path is usable as argv[0]
func validateExecutable(path string) error {
	if path == "" {
		return fmt.Errorf("executable cannot be empty")
	}
	if strings.ContainsAny(path, ";|&$` \t\n") {
		return fmt.Errorf("executable contains invalid characters: %q", path)
	}
	return nil
}

// validateFileName ensures file paths are safe
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Prevent directory traversal
	if strings.Contains(path, "..") {
		return fmt.Errorf("file path cannot contain '..'")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(path, ";|&$`") {
		return fmt.Errorf("file path contains invalid characters")
	}

	return nil
}

// Command represents a safe command configuration
type Command struct {
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if err := validateExecutable(name); err != nil {
		return nil, err
	}

	cmd := &Command{
		parent:   ctx,
		ctx:      ctx,
		name:     name,
		args:     args,
		executor: sb.executor,
	}
	return cmd.WithTimeout(sb.defaultTimeout), nil
}

// WithTimeout sets a custom timeout for the command. A zero timeout means the
// command lives as long as the parent context.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	if c.cancel != nil {
		c.cancel()
	}
	if timeout <= 0 {
		c.ctx, c.cancel = context.WithCancel(c.parent)
	} else {
		c.ctx, c.cancel = context.WithTimeout(c.parent, timeout)
	}
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// LookPath resolves a program the way built commands will.
func (sb *SafeBuilder) LookPath(name string) (string, error) {
	return sb.executor.LookPath(name)
}

// Exec creates and returns an exec.Cmd
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

// Release frees the timeout context. Call it once the command has exited.
func (c *Command) Release() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Name returns the program name.
func (c *Command) Name() string {
	return c.name
}
