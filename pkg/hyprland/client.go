// Package hyprland talks to the Hyprland compositor over its IPC sockets.
//
// Two sockets live in the instance directory: .socket.sock answers one
// request per connection, .socket2.sock streams "EVENT>>DATA" lines.
package hyprland

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/logging"
	"github.com/grovetools/luminashot/pkg/paths"
	"github.com/sirupsen/logrus"
)

const (
	requestSocketName = ".socket.sock"
	eventSocketName   = ".socket2.sock"

	// DefaultRequestTimeout bounds a single request when the caller's
	// context has no deadline.
	DefaultRequestTimeout = 2 * time.Second
)

// Options locates a compositor instance. Empty fields fall back to the
// environment.
type Options struct {
	InstanceSignature string
	RuntimeDir        string
	RequestTimeout    time.Duration
}

// Client issues requests against one Hyprland instance.
type Client struct {
	socketDir string
	timeout   time.Duration
	logger    *logrus.Entry
}

// NewClient resolves the instance socket directory.
func NewClient(opts Options) (*Client, error) {
	dir, err := SocketDir(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		socketDir: dir,
		timeout:   timeout,
		logger:    logging.NewLogger("hyprland"),
	}, nil
}

// SocketDir returns $XDG_RUNTIME_DIR/hypr/<signature>, or /tmp/hypr/<signature>
// when only the legacy location exists.
func SocketDir(opts Options) (string, error) {
	sig := opts.InstanceSignature
	if sig == "" {
		sig = os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	}
	if sig == "" {
		return "", errors.QueryFailed("instance", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set")).
			WithDetail("hint", "is Hyprland running?")
	}

	runtimeDir := opts.RuntimeDir
	if runtimeDir == "" {
		runtimeDir = paths.RuntimeDir()
	}

	primary := filepath.Join(runtimeDir, "hypr", sig)
	if runtimeDir != "" {
		if _, err := os.Stat(primary); err == nil {
			return primary, nil
		}
	}

	legacy := filepath.Join("/tmp", "hypr", sig)
	if _, err := os.Stat(legacy); err == nil {
		return legacy, nil
	}

	if runtimeDir == "" {
		return legacy, nil
	}
	return primary, nil
}

// SocketDir returns the instance directory this client talks to.
func (c *Client) SocketDir() string {
	return c.socketDir
}

// Request sends one raw command (e.g. "j/monitors") and returns the full reply.
func (c *Client) Request(ctx context.Context, cmd string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", filepath.Join(c.socketDir, requestSocketName))
	if err != nil {
		return nil, errors.QueryFailed(cmd, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return nil, errors.QueryFailed(cmd, err)
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, errors.QueryFailed(cmd, err)
	}

	c.logger.WithFields(logrus.Fields{
		"request": cmd,
		"bytes":   len(reply),
	}).Trace("Compositor reply")
	return reply, nil
}

// requestJSON issues "j/<cmd>" and decodes the reply into v.
func (c *Client) requestJSON(ctx context.Context, cmd string, v interface{}) error {
	request := "j/" + cmd
	reply, err := c.Request(ctx, request)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(reply, v); err != nil {
		return errors.QueryFailed(request, fmt.Errorf("malformed reply: %w", err)).
			WithDetail("reply", truncate(string(reply), 120))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
