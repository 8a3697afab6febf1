package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/logging"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/notify"
	"github.com/grovetools/luminashot/pkg/output"
	"github.com/grovetools/luminashot/pkg/selection"
	"github.com/grovetools/luminashot/testutil"
)

var testMonitor = models.Monitor{
	ID:      1,
	Name:    "DP-1",
	Rect:    models.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	Scale:   1,
	Focused: true,
}

type fakeInventory struct {
	mu        sync.Mutex
	active    int
	snapCalls int
	err       error
}

func (f *fakeInventory) setActive(ws int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = ws
}

func (f *fakeInventory) snapshots() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapCalls
}

func (f *fakeInventory) MonitorUnderCursor(ctx context.Context) (models.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Monitor{}, f.err
	}
	m := testMonitor
	m.ActiveWorkspaceID = f.active
	return m, nil
}

// ActiveWorkspaceWindows returns one window per workspace, addressed 0x<ws>0.
func (f *fakeInventory) ActiveWorkspaceWindows(ctx context.Context, monitor models.Monitor) (models.Workspace, []models.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapCalls++
	w := windowOn(f.active)
	return models.Workspace{ID: f.active, MonitorName: monitor.Name, Windows: []string{w.Address}}, []models.Window{w}, nil
}

func (f *fakeInventory) Window(ctx context.Context, address string) (models.Window, error) {
	return models.Window{}, errors.QueryFailed("j/clients", fmt.Errorf("gone"))
}

func windowOn(ws int) models.Window {
	return models.Window{
		Address:     fmt.Sprintf("0x%d0", ws),
		WorkspaceID: ws,
		Rect:        models.Rect{X: ws * 10, Y: ws * 20, Width: 300 + ws, Height: 200 + ws},
	}
}

type fakeStream struct {
	ch     chan models.Event
	closed bool
}

func (s *fakeStream) Events() <-chan models.Event { return s.ch }
func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeProcess finishes when the test says so or when terminated.
type fakeProcess struct {
	req        selection.Request
	done       chan struct{}
	once       sync.Once
	mu         sync.Mutex
	output     string
	terminated bool
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Result() selection.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return selection.Result{Output: p.output}
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	p.terminated = true
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *fakeProcess) finish(output string) {
	p.mu.Lock()
	p.output = output
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *fakeProcess) wasTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// fakeLauncher runs the n-th script entry for the n-th launch.
type fakeLauncher struct {
	mu     sync.Mutex
	procs  []*fakeProcess
	script []func(p *fakeProcess)
}

func (l *fakeLauncher) Launch(ctx context.Context, req selection.Request) (selection.Process, error) {
	p := &fakeProcess{req: req, done: make(chan struct{})}
	l.mu.Lock()
	n := len(l.procs)
	l.procs = append(l.procs, p)
	l.mu.Unlock()
	if n < len(l.script) {
		go l.script[n](p)
	}
	return p, nil
}

func (l *fakeLauncher) launched() []*fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeProcess(nil), l.procs...)
}

type fakeCapturer struct {
	mu       sync.Mutex
	regions  []models.Rect
	monitors []string
}

func (c *fakeCapturer) CaptureRegion(ctx context.Context, rect models.Rect) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = append(c.regions, rect)
	return []byte("region-png"), nil
}

func (c *fakeCapturer) CaptureMonitor(ctx context.Context, monitor models.Monitor) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitors = append(c.monitors, monitor.Name)
	return []byte("monitor-png"), nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, note notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

type harness struct {
	inv      *fakeInventory
	stream   *fakeStream
	launcher *fakeLauncher
	capturer *fakeCapturer
	notifier *fakeNotifier
	saveDir  string
	binDir   string
	app      *App

	subscribed  int
	inventories int
}

// newHarness wires fakes around a real output dispatcher. wlCopy is the
// body of the wl-copy script; empty means wl-copy succeeds silently.
func newHarness(t *testing.T, wlCopy string) *harness {
	t.Helper()
	if wlCopy == "" {
		wlCopy = "cat > /dev/null"
	}
	h := &harness{
		inv:      &fakeInventory{active: 1},
		stream:   &fakeStream{ch: make(chan models.Event)},
		launcher: &fakeLauncher{},
		capturer: &fakeCapturer{},
		notifier: &fakeNotifier{},
		saveDir:  t.TempDir(),
		binDir:   t.TempDir(),
	}
	testutil.WriteScript(t, h.binDir, "wl-copy", wlCopy)

	dispatcher := output.NewDispatcher(output.Options{
		Directory: h.saveDir,
		Format:    "png",
		Now:       func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, &command.PathExecutor{Dir: h.binDir}, logging.NewLogger("output-test"))

	h.app = NewWithDeps(Deps{
		Inventory: func() (selection.Inventory, error) {
			h.inventories++
			return h.inv, nil
		},
		Subscribe: func(ctx context.Context) (EventSource, error) {
			h.subscribed++
			return h.stream, nil
		},
		Launcher:   h.launcher,
		Capturer:   h.capturer,
		Dispatcher: dispatcher,
		Notifier:   h.notifier,
	})
	return h
}

func (h *harness) notifications() []notify.Notification {
	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	return append([]notify.Notification(nil), h.notifier.sent...)
}
