package main

import (
	"time"

	"github.com/dhamidi/classreader/codebase"
	"github.com/spf13/cobra"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "lsp [path]...",
		Short: "Serve workspace symbols and hovers over stdio",
		Long:  "Start a Language Server Protocol server over the given paths, or the client's workspace root when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(codebase.New(opts.baseDispatcher(), args...), version, interval)
			return server.RunStdio()
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", codebase.DefaultInterval, "how often to poll for changes, negative to disable")

	return cmd
}
