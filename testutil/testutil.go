package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RequireCommand skips the test if name is not on PATH
func RequireCommand(t *testing.T, name string) {
	t.Helper()

	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// WriteScript writes an executable shell script named name into dir and
// returns its path. body is everything after the shebang line.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	RequireCommand(t, "sh")

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0755), "failed to write script %s", name)
	return path
}

// IsolateHome points LUMINASHOT_HOME at a fresh temporary directory and
// returns it. Config, state and picture lookups all resolve below it.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("LUMINASHOT_HOME", home)
	t.Setenv("LUMINASHOT_LOG_LEVEL", "")
	return home
}

// WriteConfig writes a luminashot config file under the isolated home.
func WriteConfig(t *testing.T, home, name, content string) string {
	t.Helper()

	dir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// WaitFor polls cond until it returns true or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v", timeout)
}

// ReadLines returns the non-empty lines of a file, or nil if it does not exist.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
