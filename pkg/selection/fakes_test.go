package selection

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/pkg/models"
)

var testMonitor = models.Monitor{ID: 0, Name: "DP-1", Rect: models.Rect{Width: 1920, Height: 1080}, Focused: true}

// fakeInventory serves windows for whichever workspace is active.
type fakeInventory struct {
	mu         sync.Mutex
	active     int
	windows    map[int][]models.Window
	fresh      map[string]models.Window
	err        error
	snapshots  chan int
	snapCalls  int
	cursorHits int
	lookups    int
}

func newFakeInventory(active int) *fakeInventory {
	inv := &fakeInventory{
		active:    active,
		windows:   map[int][]models.Window{},
		fresh:     map[string]models.Window{},
		snapshots: make(chan int, 64),
	}
	for ws := 1; ws <= 5; ws++ {
		inv.windows[ws] = []models.Window{
			{Address: fmt.Sprintf("0x%d1", ws), WorkspaceID: ws, Rect: models.Rect{X: ws * 10, Y: 0, Width: 100 + ws, Height: 50}},
			{Address: fmt.Sprintf("0x%d2", ws), WorkspaceID: ws, Rect: models.Rect{X: ws * 10, Y: 100, Width: 200 + ws, Height: 80}},
		}
	}
	return inv
}

func (f *fakeInventory) setActive(ws int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = ws
}

func (f *fakeInventory) MonitorUnderCursor(ctx context.Context) (models.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursorHits++
	if f.err != nil {
		return models.Monitor{}, f.err
	}
	m := testMonitor
	m.ActiveWorkspaceID = f.active
	return m, nil
}

func (f *fakeInventory) ActiveWorkspaceWindows(ctx context.Context, monitor models.Monitor) (models.Workspace, []models.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapCalls++
	ws := models.Workspace{ID: f.active, Name: fmt.Sprint(f.active), MonitorName: monitor.Name}
	windows := append([]models.Window(nil), f.windows[f.active]...)
	for _, w := range windows {
		ws.Windows = append(ws.Windows, w.Address)
	}
	f.snapshots <- f.active
	return ws, windows, nil
}

func (f *fakeInventory) Window(ctx context.Context, address string) (models.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if w, ok := f.fresh[address]; ok {
		return w, nil
	}
	return models.Window{}, errors.QueryFailed("j/clients", fmt.Errorf("window %s not found", address))
}

func (f *fakeInventory) calls() (cursor, snaps, lookups int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursorHits, f.snapCalls, f.lookups
}

// fakeProcess is a selection process the test finishes by hand.
type fakeProcess struct {
	req  Request
	done chan struct{}
	once sync.Once

	mu         sync.Mutex
	result     Result
	terminated bool
	termErr    error
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Result() Result {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	err := p.termErr
	if err == nil {
		p.terminated = true
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.once.Do(func() { close(p.done) })
	return nil
}

// finish makes the process exit having printed output.
func (p *fakeProcess) finish(output string, err error) {
	p.mu.Lock()
	p.result = Result{Output: output, Err: err}
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

func (p *fakeProcess) wasTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

type fakeLauncher struct {
	mu       sync.Mutex
	procs    []*fakeProcess
	launched chan *fakeProcess
	err      error
	termErr  error
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{launched: make(chan *fakeProcess, 64)}
}

func (l *fakeLauncher) Launch(ctx context.Context, req Request) (Process, error) {
	if l.err != nil {
		return nil, l.err
	}
	p := &fakeProcess{req: req, done: make(chan struct{}), termErr: l.termErr}
	l.mu.Lock()
	l.procs = append(l.procs, p)
	l.mu.Unlock()
	l.launched <- p
	return p, nil
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func waitLaunch(t *testing.T, l *fakeLauncher) *fakeProcess {
	t.Helper()
	select {
	case p := <-l.launched:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("selection process was never launched")
		return nil
	}
}

func waitSnapshot(t *testing.T, inv *fakeInventory) int {
	t.Helper()
	select {
	case ws := <-inv.snapshots:
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("inventory was never queried")
		return 0
	}
}

type sessionResult struct {
	outcome Outcome
	err     error
}

func runAsync(fn func() (Outcome, error)) <-chan sessionResult {
	ch := make(chan sessionResult, 1)
	go func() {
		o, err := fn()
		ch <- sessionResult{o, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan sessionResult) sessionResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("session did not finish")
		return sessionResult{}
	}
}

func workspaceChanged(from, to int) models.Event {
	return models.Event{Kind: models.EventWorkspaceChanged, From: from, To: to, Raw: fmt.Sprintf("workspacev2>>%d,%d", to, to)}
}
