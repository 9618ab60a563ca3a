package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/simulate"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

func newSimulateCommand() *cobra.Command {
	var (
		codecName string
		htmlPath  string
		timeout   time.Duration
		settle    time.Duration
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <scenario.js>",
		Short: "Run a scenario against a headless browser",
		Long: `simulate starts a headless browser, connects it to the interop proxies
over an in-memory bridge and runs the scenario script. The script moves
the device and resizes elements through the geolocation and dom globals
and calls the proxies through the host global.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading scenario: %w", err)
			}
			codec, err := wire.CodecByName(codecName)
			if err != nil {
				return err
			}

			opts := simulate.DefaultOptions()
			opts.Codec = codec
			opts.Settle = settle
			opts.Sandbox.Timeout = timeout
			if htmlPath != "" {
				html, err := os.ReadFile(htmlPath)
				if err != nil {
					return fmt.Errorf("reading document: %w", err)
				}
				opts.HTML = string(html)
			}
			if verbose {
				logger := logging.NewDevelopment()
				defer func() { _ = logger.Sync() }()
				opts.Logger = logger.Logger
			}

			report, runErr := simulate.Run(cmd.Context(), string(script), opts)
			if report == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Events:")
			for _, e := range report.Events {
				fmt.Fprintln(out, "  "+formatEvent(e))
			}
			fmt.Fprintln(out, "Browser console:")
			for _, e := range report.Console {
				fmt.Fprintf(out, "  [%s] %s\n", e.Level, e.Message)
			}
			if len(report.Result.Console) > 0 {
				fmt.Fprintln(out, "Scenario console:")
				for _, e := range report.Result.Console {
					fmt.Fprintf(out, "  [%s] %s\n", e.Level, e.Message)
				}
			}
			if runErr != nil {
				return runErr
			}
			if report.Result.Value != nil {
				fmt.Fprintf(out, "Result: %v\n", report.Result.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&codecName, "codec", "json", "wire codec (json or cbor)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML file seeding the document")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "scenario timeout")
	cmd.Flags().DurationVar(&settle, "settle", 50*time.Millisecond, "wait for notifications after the script")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log bridge traffic")
	return cmd
}
