//go:build !windows

package process

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultGracePeriod is how long a process group gets between SIGTERM and SIGKILL.
const DefaultGracePeriod = 200 * time.Millisecond

// ErrStillRunning is returned when a process survives SIGKILL for a full grace period.
var ErrStillRunning = errors.New("process did not exit after SIGKILL")

// SetProcessGroup configures a command to run in its own process group so
// helpers it forks are signalled with it.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// TerminateGroup stops the process group led by pid. It sends SIGTERM, waits
// up to grace for exited to close, then sends SIGKILL and waits once more.
// A process that is gone without exited closing counts as terminated.
// exited must be closed by whoever owns cmd.Wait.
func TerminateGroup(pid int, exited <-chan struct{}, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}

	select {
	case <-exited:
		return nil
	default:
	}

	if err := signalGroup(pid, unix.SIGTERM); err != nil {
		return err
	}
	if waitExit(exited, grace) {
		return nil
	}

	if err := signalGroup(pid, unix.SIGKILL); err != nil {
		return err
	}
	if waitExit(exited, grace) || !IsProcessAlive(pid) {
		return nil
	}
	return fmt.Errorf("pid %d: %w", pid, ErrStillRunning)
}

// signalGroup delivers sig to the whole group, falling back to the leader
// alone when the group is already gone. A vanished process is not an error.
func signalGroup(pid int, sig unix.Signal) error {
	err := unix.Kill(-pid, sig)
	if err == nil {
		return nil
	}
	if isGone(err) {
		err = unix.Kill(pid, sig)
		if err == nil || isGone(err) {
			return nil
		}
	}
	// EPERM can occur if the group emptied between checks
	if errors.Is(err, unix.EPERM) {
		return nil
	}
	return fmt.Errorf("signal %v to pid %d: %w", sig, pid, err)
}

func waitExit(exited <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-exited:
		return true
	case <-timer.C:
		return false
	}
}

func isGone(err error) bool {
	return errors.Is(err, unix.ESRCH) || errors.Is(err, unix.ECHILD)
}
