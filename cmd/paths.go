package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/luminashot/cli"
	"github.com/grovetools/luminashot/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput represents the directories luminashot reads and writes.
type PathsOutput struct {
	ConfigDir      string `json:"config_dir"`
	StateDir       string `json:"state_dir"`
	CacheDir       string `json:"cache_dir"`
	RuntimeDir     string `json:"runtime_dir"`
	ScreenshotsDir string `json:"screenshots_dir"`
	LogDir         string `json:"log_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by luminashot",
		Long: `Print the paths used by luminashot.

This command outputs the paths in JSON format by default, making it easy
to parse from scripts.

- config_dir: Configuration files (luminashot.yml)
- state_dir: Logs
- screenshots_dir: Default save directory when output.directory is unset
- log_dir: Per-component log files when logging.file is enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			screenshots := paths.ScreenshotsDir()
			if cfg.Output.Directory != "" {
				screenshots = paths.ExpandHome(cfg.Output.Directory)
			}

			output := PathsOutput{
				ConfigDir:      paths.ConfigDir(),
				StateDir:       paths.StateDir(),
				CacheDir:       paths.CacheDir(),
				RuntimeDir:     paths.RuntimeDir(),
				ScreenshotsDir: screenshots,
				LogDir:         paths.LogDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
