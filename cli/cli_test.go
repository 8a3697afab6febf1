package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/grovetools/luminashot/errors"
	"github.com/grovetools/luminashot/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"query", errors.QueryFailed("j/monitors", nil), ExitQuery},
		{"spawn", errors.SpawnFailed("slurp", "start", nil), ExitSpawn},
		{"aborted", errors.SelectionAborted("no windows on active workspace"), ExitSpawn},
		{"capture", errors.BackendFailed("grim", nil), ExitCapture},
		{"empty region", errors.EmptyRegion(0, 4), ExitCapture},
		{"dispatch", errors.DispatchFailed("save", nil), ExitDispatch},
		{"config", errors.ConfigInvalid("bad"), ExitConfig},
		{"wrapped", fmt.Errorf("run: %w", errors.QueryFailed("j/clients", nil)), ExitQuery},
		{"plain", fmt.Errorf("boom"), ExitOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &ErrorHandler{Out: &buf}

	err := errors.BackendUnavailable("grim", nil)
	assert.Same(t, err, h.Handle(err))
	assert.Contains(t, buf.String(), "Capture backend 'grim' is not available")

	buf.Reset()
	h.Handle(errors.SelectionAborted("no windows on active workspace"))
	assert.Contains(t, buf.String(), "no windows on active workspace")

	buf.Reset()
	h.Handle(fmt.Errorf("plain failure"))
	assert.Contains(t, buf.String(), "Error: plain failure")

	assert.NoError(t, h.Handle(nil))
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &ErrorHandler{Out: &buf, Verbose: true}

	h.Handle(errors.QueryFailed("j/clients", fmt.Errorf("connection refused")))
	assert.Contains(t, buf.String(), "Error details:")
	assert.Contains(t, buf.String(), `"code": "QUERY_FAILED"`)
}

func TestStandardFlags(t *testing.T) {
	cmd := NewStandardCommand("luminashot", "test")
	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json", "-c", "/tmp/x.yml"}))

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Equal(t, "/tmp/x.yml", opts.ConfigFile)
}

func TestVersionCommandJSON(t *testing.T) {
	testutil.IsolateHome(t)

	root := NewStandardCommand("luminashot", "test")
	root.AddCommand(NewVersionCommand("luminashot"))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["goVersion"])
}
