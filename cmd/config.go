package cmd

import (
	"fmt"

	"github.com/grovetools/luminashot/cli"
	"github.com/grovetools/luminashot/config"
	"github.com/spf13/cobra"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Shows the configuration a capture would run with. Files are merged in order:
1. luminashot.yml / luminashot.yaml / luminashot.toml in the config directory
2. luminashot.override.{yml,yaml,toml} next to it
An explicit -c path is used on its own. Unset fields show their defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			sources := config.Sources(cli.GetOptions(cmd).ConfigFile)
			if len(sources) == 0 {
				fmt.Fprintln(w, "# Source: defaults")
			}
			for _, src := range sources {
				fmt.Fprintf(w, "# Source: %s\n", src)
			}

			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(w, string(data))
			return nil
		},
	}
	return cmd
}
