package hyprland

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/luminashot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	p := &parser{current: 1}

	steps := []struct {
		line string
		want models.Event
	}{
		{"activewindow>>kitty,shell", models.Event{Kind: models.EventOther}},
		{"workspacev2>>3,3", models.Event{Kind: models.EventWorkspaceChanged, From: 1, To: 3}},
		// v1 twin of the line above collapses.
		{"workspace>>3", models.Event{Kind: models.EventOther}},
		{"workspace>>special:scratch", models.Event{Kind: models.EventOther}},
		{"focusedmonv2>>HDMI-A-1,7", models.Event{Kind: models.EventMonitorFocusChanged, From: 3, To: 7, Monitor: "HDMI-A-1"}},
		{"focusedmon>>HDMI-A-1,7", models.Event{Kind: models.EventOther}},
		{"workspace>>2", models.Event{Kind: models.EventWorkspaceChanged, From: 7, To: 2, Monitor: "HDMI-A-1"}},
		{"garbage", models.Event{Kind: models.EventOther}},
	}

	for _, step := range steps {
		got := p.parse(step.line)
		step.want.Raw = step.line
		assert.Equal(t, step.want, got, step.line)
	}
}

func TestParserUnknownOrigin(t *testing.T) {
	p := &parser{current: models.UnknownWorkspace}
	ev := p.parse("workspacev2>>5,5")
	assert.Equal(t, models.EventWorkspaceChanged, ev.Kind)
	assert.Equal(t, models.UnknownWorkspace, ev.From)
}

func subscribe(t *testing.T, f *fakeHyprland) *EventStream {
	t.Helper()
	f.reply("j/activeworkspace", `{"id": 1, "name": "1"}`)

	s, err := f.client().Subscribe(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	select {
	case <-f.subReady:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never connected")
	}
	return s
}

func nextEvent(t *testing.T, s *EventStream) models.Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}

func TestEventStreamDeliversInOrder(t *testing.T) {
	f := newFakeHyprland(t)
	s := subscribe(t, f)

	f.emit("workspacev2>>2,2", "workspace>>2", "focusedmonv2>>DP-2,9")

	ev := nextEvent(t, s)
	assert.Equal(t, models.EventWorkspaceChanged, ev.Kind)
	assert.Equal(t, 1, ev.From)
	assert.Equal(t, 2, ev.To)

	assert.Equal(t, models.EventOther, nextEvent(t, s).Kind)

	ev = nextEvent(t, s)
	assert.Equal(t, models.EventMonitorFocusChanged, ev.Kind)
	assert.Equal(t, "DP-2", ev.Monitor)
	assert.Equal(t, 9, ev.To)
}

func TestEventStreamBuffersForSlowConsumer(t *testing.T) {
	f := newFakeHyprland(t)
	s := subscribe(t, f)

	var lines []string
	for i := 2; i < 202; i++ {
		lines = append(lines, fmt.Sprintf("workspacev2>>%d,%d", i, i))
	}
	f.emit(lines...)
	f.disconnect()

	// Everything emitted before the disconnect is still delivered.
	var got []int
	for ev := range s.Events() {
		got = append(got, ev.To)
	}
	require.Len(t, got, 200)
	assert.Equal(t, 2, got[0])
	assert.Equal(t, 201, got[199])
}

func TestEventStreamSurvivesLongTitle(t *testing.T) {
	f := newFakeHyprland(t)
	s := subscribe(t, f)

	title := strings.Repeat("x", 70*1024)
	f.emit("windowtitlev2>>5a5a,"+title, "workspacev2>>2,2")

	ev := nextEvent(t, s)
	assert.Equal(t, models.EventOther, ev.Kind)
	assert.Len(t, ev.Raw, maxEventLine)

	ev = nextEvent(t, s)
	assert.Equal(t, models.EventWorkspaceChanged, ev.Kind)
	assert.Equal(t, 1, ev.From)
	assert.Equal(t, 2, ev.To)
}

func TestReadEventLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("short\n"+strings.Repeat("a", 40)+"\nexact\ntail"), 16)

	line, truncated, err := readEventLine(r, 8)
	require.NoError(t, err)
	assert.Equal(t, "short", line)
	assert.False(t, truncated)

	line, truncated, err = readEventLine(r, 8)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa", line)
	assert.True(t, truncated)

	line, truncated, err = readEventLine(r, 5)
	require.NoError(t, err)
	assert.Equal(t, "exact", line)
	assert.False(t, truncated)

	line, truncated, err = readEventLine(r, 8)
	require.NoError(t, err)
	assert.Equal(t, "tail", line)
	assert.False(t, truncated)

	_, _, err = readEventLine(r, 8)
	assert.ErrorIs(t, err, io.EOF)
}

func TestEventStreamClose(t *testing.T) {
	f := newFakeHyprland(t)
	s := subscribe(t, f)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	select {
	case _, ok := <-s.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}
}

func TestSubscribeWithoutCompositor(t *testing.T) {
	c, err := NewClient(Options{InstanceSignature: "gone", RuntimeDir: t.TempDir()})
	require.NoError(t, err)

	_, err = c.Subscribe(context.Background())
	require.Error(t, err)
}
