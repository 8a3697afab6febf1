package command

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Executor creates exec.Cmd instances. This abstraction lets tests substitute
// scripted stand-ins for slurp, grim, wl-copy and notify-send without touching
// production code.
type Executor interface {
	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd

	// LookPath resolves a program name the way CommandContext will.
	LookPath(name string) (string, error)
}

// RealExecutor is the production implementation of the Executor interface,
// which uses the standard os/exec package to create commands.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// LookPath searches PATH for the program.
func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// PathExecutor resolves bare program names against Dir before PATH.
// Tests use it to run scripted binaries in place of the real tools.
type PathExecutor struct {
	Dir string
}

// CommandContext creates a command whose program is looked up in Dir first.
func (e *PathExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	if resolved, err := e.LookPath(name); err == nil {
		name = resolved
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "PATH="+e.Dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return cmd
}

// LookPath returns Dir/name when it exists and is executable.
func (e *PathExecutor) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		return exec.LookPath(name)
	}
	candidate := filepath.Join(e.Dir, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
		return candidate, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}
