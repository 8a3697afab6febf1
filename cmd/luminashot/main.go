package main

import (
	"os"

	"github.com/grovetools/luminashot/cli"
	"github.com/grovetools/luminashot/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		opts := cli.GetOptions(rootCmd)
		cli.NewErrorHandler(opts.Verbose).Handle(err)
		os.Exit(cli.ExitCode(err))
	}
}
