package profiling

import (
	"github.com/spf13/cobra"
)

// CobraProfiler wires the --timing flag into a command tree.
type CobraProfiler struct {
	timing bool
}

// NewCobraProfiler creates a profiler for Cobra integration.
func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{}
}

// AddFlags adds --timing to cmd and installs the pre and post run hooks.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&p.timing, "timing", false, "Print how long each capture phase took")
	cmd.PersistentPreRunE = p.PreRun
	cmd.PersistentPostRun = p.PostRun
}

// PreRun enables the global profiler when --timing is set.
func (p *CobraProfiler) PreRun(cmd *cobra.Command, args []string) error {
	if p.timing {
		Enable()
	}
	return nil
}

// PostRun prints the timing summary to the command's stderr.
func (p *CobraProfiler) PostRun(cmd *cobra.Command, args []string) {
	if p.timing {
		Summarize(cmd.ErrOrStderr())
	}
}
