package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dhamidi/classreader/codebase"
	"github.com/spf13/cobra"
)

func printChanges(out io.Writer, changes codebase.Changes) {
	for _, name := range changes.Removed {
		fmt.Fprintf(out, "- %s\n", name)
	}
	for _, name := range changes.Loaded {
		fmt.Fprintf(out, "+ %s\n", name)
	}
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Load the given paths and report classes as they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			c := codebase.New(opts.baseDispatcher(), args...)
			changes, err := c.Load(ctx)
			if err != nil {
				log.Warningf("initial load: %s", err)
			}
			fmt.Fprintf(out, "watching %d classes\n", len(changes.Loaded))

			w := codebase.NewWatcher(c, interval)
			w.OnChange = func(changes codebase.Changes, err error) {
				printChanges(out, changes)
				if err != nil {
					fmt.Fprintf(out, "! %v\n", err)
				}
			}
			w.Start(ctx)
			<-ctx.Done()
			w.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", codebase.DefaultInterval, "how often to poll for changes")

	return cmd
}
