package cli

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/luminashot/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates a standard version command
func NewVersionCommand(componentName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version number of %s", componentName),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			if GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", componentName, info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Commit:    %s\n", info.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  Built:     %s\n", info.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Platform:  %s\n", info.Platform)
			return nil
		},
	}
}
