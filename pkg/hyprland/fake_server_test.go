package hyprland

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeHyprland serves canned replies on .socket.sock and lets tests push
// lines to every .socket2.sock subscriber.
type fakeHyprland struct {
	t       *testing.T
	dir     string
	runtime string
	sig     string

	mu       sync.Mutex
	replies  map[string]string
	requests []string
	subs     []net.Conn
	subReady chan struct{}
}

func newFakeHyprland(t *testing.T) *fakeHyprland {
	t.Helper()

	// Unix socket paths are length limited; keep the root short.
	runtime, err := os.MkdirTemp("", "hypr")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(runtime) })

	f := &fakeHyprland{
		t:        t,
		runtime:  runtime,
		sig:      "testsig",
		replies:  map[string]string{},
		subReady: make(chan struct{}, 8),
	}
	f.dir = filepath.Join(runtime, "hypr", f.sig)
	require.NoError(t, os.MkdirAll(f.dir, 0755))

	reqLn, err := net.Listen("unix", filepath.Join(f.dir, requestSocketName))
	require.NoError(t, err)
	evLn, err := net.Listen("unix", filepath.Join(f.dir, eventSocketName))
	require.NoError(t, err)
	t.Cleanup(func() {
		reqLn.Close()
		evLn.Close()
		f.mu.Lock()
		for _, c := range f.subs {
			c.Close()
		}
		f.mu.Unlock()
	})

	go f.serveRequests(reqLn)
	go f.serveEvents(evLn)
	return f
}

func (f *fakeHyprland) options() Options {
	return Options{InstanceSignature: f.sig, RuntimeDir: f.runtime}
}

func (f *fakeHyprland) client() *Client {
	f.t.Helper()
	c, err := NewClient(f.options())
	require.NoError(f.t, err)
	return c
}

func (f *fakeHyprland) reply(request, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[request] = body
}

func (f *fakeHyprland) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeHyprland) serveRequests(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func(conn net.Conn) {
			defer conn.Close()
			buf := make([]byte, 256)
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			request := string(buf[:n])

			f.mu.Lock()
			f.requests = append(f.requests, request)
			body, ok := f.replies[request]
			f.mu.Unlock()

			if !ok {
				body = "unknown request"
			}
			_, _ = conn.Write([]byte(body))
		}(conn)
	}
}

func (f *fakeHyprland) serveEvents(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.subs = append(f.subs, conn)
		f.mu.Unlock()
		f.subReady <- struct{}{}
	}
}

// emit writes lines to every subscriber.
func (f *fakeHyprland) emit(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.subs {
		w := bufio.NewWriter(c)
		for _, l := range lines {
			_, _ = w.WriteString(l + "\n")
		}
		_ = w.Flush()
	}
}

// disconnect drops every subscriber.
func (f *fakeHyprland) disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.subs {
		c.Close()
	}
	f.subs = nil
}

const monitorsJSON = `[
  {"id": 0, "name": "DP-1", "x": 0, "y": 0, "width": 3840, "height": 2160, "scale": 2.0, "transform": 0, "focused": false, "activeWorkspace": {"id": 1, "name": "1"}},
  {"id": 1, "name": "HDMI-A-1", "x": 1920, "y": 0, "width": 1920, "height": 1080, "scale": 1.0, "transform": 1, "focused": true, "activeWorkspace": {"id": 4, "name": "4"}}
]`

const clientsJSON = `[
  {"address": "0xaaa", "mapped": true, "hidden": false, "at": [10, 20], "size": [800, 600], "workspace": {"id": 1, "name": "1"}, "class": "kitty", "title": "shell"},
  {"address": "0xbbb", "mapped": true, "hidden": true, "at": [0, 0], "size": [100, 100], "workspace": {"id": 1, "name": "1"}, "class": "hidden", "title": "hidden"},
  {"address": "0xccc", "mapped": true, "hidden": false, "at": [1920, 0], "size": [1080, 1920], "workspace": {"id": 4, "name": "4"}, "class": "firefox", "title": "web"},
  {"address": "0xddd", "mapped": false, "hidden": false, "at": [5, 5], "size": [50, 50], "workspace": {"id": 1, "name": "1"}, "class": "unmapped", "title": "x"},
  {"address": "0xeee", "mapped": true, "hidden": false, "at": [900, 40], "size": [400, 300], "workspace": {"id": 1, "name": "1"}, "class": "foot", "title": "logs"}
]`
