package selection

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/logging"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlurp(t *testing.T, body string) (*Slurp, string) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "slurp", body)
	s := NewSlurp(SlurpOptions{
		Background:  "#FFFFFF44",
		GracePeriod: 50 * time.Millisecond,
	}, &command.PathExecutor{Dir: dir}, logging.NewLogger("selection-test"))
	return s, dir
}

func waitDone(t *testing.T, p Process) Result {
	t.Helper()
	select {
	case <-p.Done():
		return p.Result()
	case <-time.After(5 * time.Second):
		t.Fatal("slurp did not exit")
		return Result{}
	}
}

func TestSlurpArgs(t *testing.T) {
	s := NewSlurp(SlurpOptions{Background: "#00000080", BorderColor: "#FF0000FF"}, nil, logging.NewLogger("selection-test"))

	assert.Equal(t,
		[]string{"-r", "-b", "#00000080", "-c", "#FF0000FF", "-f", "%l"},
		s.Args(Request{Mode: models.ModeWindow}))
	assert.Equal(t,
		[]string{"-b", "#00000080", "-c", "#FF0000FF"},
		s.Args(Request{Mode: models.ModeRegion}))
}

func TestSlurpWindowSelection(t *testing.T) {
	s, dir := newTestSlurp(t, `echo "$@" > "$(dirname "$0")/args"
read first
read second
echo "${second##* }"
`)

	p, err := s.Launch(context.Background(), Request{
		Mode: models.ModeWindow,
		Candidates: []Candidate{
			{Label: "0xaaa", Rect: models.Rect{X: 0, Y: 0, Width: 10, Height: 10}},
			{Label: "0xbbb", Rect: models.Rect{X: 20, Y: 30, Width: 40, Height: 50}},
		},
	})
	require.NoError(t, err)

	res := waitDone(t, p)
	require.NoError(t, res.Err)
	assert.Equal(t, "0xbbb", res.Output)

	args := testutil.ReadLines(t, filepath.Join(dir, "args"))
	require.Len(t, args, 1)
	assert.Equal(t, "-r -b #FFFFFF44 -f %l", args[0])
}

func TestSlurpCancelled(t *testing.T) {
	s, _ := newTestSlurp(t, `echo "selection cancelled" >&2
exit 1
`)

	p, err := s.Launch(context.Background(), Request{Mode: models.ModeRegion})
	require.NoError(t, err)

	res := waitDone(t, p)
	assert.Empty(t, res.Output)
	assert.Error(t, res.Err)
	assert.Equal(t, UserCancelled, interpretRegion(res).Kind)
}

func TestSlurpRegion(t *testing.T) {
	s, _ := newTestSlurp(t, `echo "100,200 300x400"
`)

	p, err := s.Launch(context.Background(), Request{Mode: models.ModeRegion})
	require.NoError(t, err)

	outcome := interpretRegion(waitDone(t, p))
	assert.Equal(t, Resolved, outcome.Kind)
	assert.Equal(t, models.Rect{X: 100, Y: 200, Width: 300, Height: 400}, outcome.Region)
}

func TestSlurpTerminateGraceful(t *testing.T) {
	s, _ := newTestSlurp(t, `while :; do sleep 0.05; done
`)

	p, err := s.Launch(context.Background(), Request{Mode: models.ModeRegion})
	require.NoError(t, err)

	require.NoError(t, p.Terminate())
	select {
	case <-p.Done():
	default:
		t.Fatal("process still running after Terminate")
	}
}

func TestSlurpTerminateEscalates(t *testing.T) {
	s, dir := newTestSlurp(t, `trap '' TERM
touch "$(dirname "$0")/ready"
while :; do sleep 0.05; done
`)

	p, err := s.Launch(context.Background(), Request{Mode: models.ModeRegion})
	require.NoError(t, err)
	testutil.WaitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(filepath.Join(dir, "ready"))
		return err == nil
	})

	start := time.Now()
	require.NoError(t, p.Terminate())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSlurpSurvivesContextCancel(t *testing.T) {
	s, _ := newTestSlurp(t, `sleep 0.3
echo "1,2 3x4"
`)

	ctx, cancel := context.WithCancel(context.Background())
	p, err := s.Launch(ctx, Request{Mode: models.ModeRegion})
	require.NoError(t, err)
	cancel()

	// Only the session decides when slurp dies.
	res := waitDone(t, p)
	assert.Equal(t, "1,2 3x4", res.Output)
}

func TestSlurpMissingBinary(t *testing.T) {
	s := NewSlurp(SlurpOptions{Path: "luminashot-no-such-slurp"}, &command.PathExecutor{Dir: t.TempDir()}, logging.NewLogger("selection-test"))

	_, err := s.Launch(context.Background(), Request{Mode: models.ModeRegion})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSpawnFailed))
	assert.True(t, strings.Contains(err.Error(), "start"))
}

func TestSessionWithSlurp(t *testing.T) {
	s, _ := newTestSlurp(t, `read line
echo "${line##* }"
`)
	inv := newFakeInventory(3)
	session := NewSession(Options{Launcher: s, Inventory: inv})

	outcome, err := session.SelectWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Resolved, outcome.Kind)
	assert.Equal(t, inv.windows[3][0].Rect, outcome.Region)
}
