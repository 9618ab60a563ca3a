// Package cli implements interopctl, the command line client of the bridge.
package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/webinterop/internal/client"
)

type globalFlags struct {
	server  string
	timeout time.Duration
}

// NewRootCommand builds the interopctl command tree.
func NewRootCommand(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "interopctl",
		Short: "Drive browser interop components",
		Long: `interopctl talks to a running webinterop server, or runs scenarios
against a headless browser without one.

List connected browsers:   interopctl status
Fetch a position:          interopctl locate <component>
Run a scenario locally:    interopctl simulate scenario.js`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.server, "server", "http://localhost:8000", "server base URL")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		newStatusCommand(flags),
		newEventsCommand(flags),
		newLocateCommand(flags),
		newWatchCommand(flags),
		newUnwatchCommand(flags),
		newObserveCommand(flags),
		newLogCommand(flags),
		newSimulateCommand(),
	)
	return root
}

// Execute runs interopctl with args, writing to out.
func Execute(version string, args []string, out io.Writer) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.Execute()
}

func (f *globalFlags) client() *client.Client {
	cfg := client.DefaultConfig()
	cfg.Timeout = f.timeout
	return client.New(f.server, cfg)
}
