package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/grovetools/luminashot/cli"
	"github.com/grovetools/luminashot/command"
	"github.com/grovetools/luminashot/internal/app"
	"github.com/grovetools/luminashot/logging"
	"github.com/grovetools/luminashot/pkg/models"
	"github.com/grovetools/luminashot/pkg/profiling"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the luminashot command. Running it without a
// subcommand takes a screenshot.
func NewRootCmd() *cobra.Command {
	mode := models.ModeMonitor
	out := models.OutputSave

	cmd := cli.NewStandardCommand("luminashot", "Take screenshots on Hyprland")
	cmd.Long = `Take a screenshot of the monitor under the cursor, a window on the
active workspace, or a region selected with the mouse.

In window mode the selection follows the active workspace: switching
workspaces while selecting restarts the selection with the new windows.
Pressing Escape cancels without taking a screenshot.`
	cmd.Example = `  luminashot
  luminashot -m window -o copy
  luminashot --mode region --output save+copy`
	cmd.Args = cobra.NoArgs

	cmd.Flags().VarP(&mode, "mode", "m", "Capture mode: monitor, window or region")
	cmd.Flags().VarP(&out, "output", "o", "Output: save, copy or save+copy")
	profiling.NewCobraProfiler().AddFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCapture(cmd, app.Request{Mode: mode, Output: out})
	}

	cmd.AddCommand(cli.NewVersionCommand("luminashot"))
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewPathsCmd())

	return cmd
}

// captureReport is the --json form of a finished run.
type captureReport struct {
	Mode      string `json:"mode"`
	Output    string `json:"output"`
	Cancelled bool   `json:"cancelled"`
	Region    string `json:"region,omitempty"`
	Monitor   string `json:"monitor,omitempty"`
	Path      string `json:"path,omitempty"`
	Copied    bool   `json:"copied"`
	Bytes     int    `json:"bytes,omitempty"`
	Launches  int    `json:"launches,omitempty"`
	CopyError string `json:"copy_error,omitempty"`
	SaveError string `json:"save_error,omitempty"`
}

func runCapture(cmd *cobra.Command, req app.Request) error {
	span := profiling.Start("config")
	cfg, err := cli.LoadConfig(cmd)
	span.Stop()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, &command.RealExecutor{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.Run(ctx, req)
	if err != nil {
		return err
	}

	if cli.GetOptions(cmd).JSONOutput {
		return printReport(cmd, req, report)
	}

	pretty := logging.NewPrettyLogger()
	if report.Cancelled {
		pretty.Info("Selection cancelled")
		return nil
	}
	res := report.Output
	if res.Saved() {
		pretty.Path("Saved", res.Path)
	}
	pretty.Field("Region", report.Region)
	pretty.Field("Size", humanize.Bytes(uint64(report.Bytes)))
	if res.Copied() {
		pretty.Success("Copied to clipboard")
	}
	if res.CopyErr != nil && res.Mode.Copies() {
		pretty.Warn(fmt.Sprintf("Clipboard copy failed: %v", res.CopyErr))
	}
	if res.SaveErr != nil && res.Mode.Saves() {
		pretty.Warn(fmt.Sprintf("Saving failed: %v", res.SaveErr))
	}
	return nil
}

func printReport(cmd *cobra.Command, req app.Request, report *app.Report) error {
	out := captureReport{
		Mode:      string(req.Mode),
		Output:    string(req.Output),
		Cancelled: report.Cancelled,
		Monitor:   report.Monitor,
		Bytes:     report.Bytes,
		Launches:  report.Launches,
	}
	if !report.Cancelled {
		out.Region = report.Region.String()
	}
	if res := report.Output; res != nil {
		out.Path = res.Path
		out.Copied = res.Copied()
		if res.CopyErr != nil {
			out.CopyError = res.CopyErr.Error()
		}
		if res.SaveErr != nil {
			out.SaveError = res.SaveErr.Error()
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
