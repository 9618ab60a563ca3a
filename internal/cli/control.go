package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

func newStatusCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connected browser contexts and call counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := flags.client().Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status.Metrics != nil {
				m := status.Metrics
				fmt.Fprintf(out, "Sessions: %d active, %d total\n", m.ActiveSessions, m.TotalSessions)
				fmt.Fprintf(out, "Calls: %d (%d failed), callbacks: %d\n\n", m.TotalCalls, m.FailedCalls, m.TotalCallbacks)
			}
			if len(status.Components) == 0 {
				fmt.Fprintln(out, "No components connected")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCONTEXT\tCODEC\tCONNECTED\tEVENTS")
			for _, c := range status.Components {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.ContextID, c.Codec, c.ConnectedAt.Format(time.RFC3339), c.Events)
			}
			return w.Flush()
		},
	}
}

func newEventsCommand(flags *globalFlags) *cobra.Command {
	var since uint64
	cmd := &cobra.Command{
		Use:   "events <component>",
		Short: "Print the watch and resize notifications of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := flags.client().Events(cmd.Context(), args[0], since)
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Fprintln(cmd.OutOrStdout(), formatEvent(e))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&since, "since", 0, "only events after this sequence number")
	return cmd
}

func newLocateCommand(flags *globalFlags) *cobra.Command {
	var (
		highAccuracy bool
		timeout      time.Duration
		maximumAge   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "locate <component>",
		Short: "Fetch the current position of a browser once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &geolocation.PositionOptions{}
			if cmd.Flags().Changed("high-accuracy") {
				opts.EnableHighAccuracy = geolocation.Bool(highAccuracy)
			}
			if cmd.Flags().Changed("position-timeout") {
				opts.Timeout = geolocation.Duration(timeout)
			}
			if cmd.Flags().Changed("maximum-age") {
				opts.MaximumAge = geolocation.Duration(maximumAge)
			}

			result, err := flags.client().GetLocation(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&highAccuracy, "high-accuracy", false, "request a high accuracy fix")
	cmd.Flags().DurationVar(&timeout, "position-timeout", 0, "browser side timeout")
	cmd.Flags().DurationVar(&maximumAge, "maximum-age", 0, "accept a cached position this old")
	return cmd
}

func newWatchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <component> <key>",
		Short: "Start a position watch under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := flags.client().Watch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %q\n", args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Already watching %q\n", args[1])
			}
			return nil
		},
	}
}

func newUnwatchCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unwatch <component> <key>",
		Short: "Stop the position watch under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.client().Unwatch(cmd.Context(), args[0], args[1])
		},
	}
}

func newObserveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "observe <component> <element-id>...",
		Short: "Observe the size of elements",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.client().AddResizers(cmd.Context(), args[0], args[1:]...)
		},
	}
}

func newLogCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "log <component> <level> <message>",
		Short: "Write a message to the console of a browser",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := interop.ParseLogLevel(args[1])
			if err != nil {
				return err
			}
			logged, err := flags.client().Log(cmd.Context(), args[0], level, args[2])
			if err != nil {
				return err
			}
			if !logged {
				fmt.Fprintf(cmd.OutOrStdout(), "Level %s is disabled by the logger configuration\n", level)
			}
			return nil
		},
	}
}

func formatEvent(e component.Event) string {
	ts := e.Time.Format("15:04:05.000")
	switch {
	case e.Watch != nil:
		reason, _ := e.Watch.Reason.MarshalText()
		if len(reason) == 0 {
			reason = []byte("none")
		}
		return fmt.Sprintf("#%d %s geolocation %s %s %s", e.Seq, ts, e.Watch.Key, reason, e.Watch.Result)
	case e.Resize != nil:
		return fmt.Sprintf("#%d %s resize %s %gx%g", e.Seq, ts, e.Resize.ID, e.Resize.Width, e.Resize.Height)
	}
	return fmt.Sprintf("#%d %s %s", e.Seq, ts, e.Kind)
}
