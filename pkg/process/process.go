//go:build !windows

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsProcessAlive checks if a process with the given PID is still running.
func IsProcessAlive(pid int) bool {
	// PID 0 or less is invalid.
	if pid <= 0 {
		return false
	}

	// Signal 0 checks for existence without delivering anything.
	// EPERM means the process exists but belongs to someone else.
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
