package cli

import (
	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the flags every luminashot command accepts
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		// Errors are reported by ErrorHandler; usage is only useful for flag errors.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to luminashot config file")

	return cmd
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads the configuration selected by the command's flags and
// configures logging from it.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := GetOptions(cmd)

	logging.SetVerbose(opts.Verbose)
	logging.SetJSON(opts.JSONOutput)

	cfg, err := config.LoadDefaultWithLogger(opts.ConfigFile, GetLogger(cmd).Logger)
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg)
	return cfg, nil
}

// GetLogger returns the CLI logger with the command's flags applied
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	opts := GetOptions(cmd)
	logging.SetVerbose(opts.Verbose)
	logging.SetJSON(opts.JSONOutput)
	return logging.NewLogger("cli")
}
