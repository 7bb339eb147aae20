package main

import (
	"github.com/dhamidi/classreader/loader"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("classreader")

type globalOptions struct {
	verbose      int
	logFile      string
	strict       bool
	modifiedOnly bool
}

// dispatcher classifies inputs according to the --strict and
// --modified-only flags.
func (o *globalOptions) dispatcher() loader.Dispatcher {
	d := o.baseDispatcher()
	if o.modifiedOnly {
		return loader.NewModifiedOnlyDispatcher(d)
	}
	return d
}

// baseDispatcher ignores --modified-only, for a codebase.Codebase which
// tracks modification times itself.
func (o *globalOptions) baseDispatcher() loader.Dispatcher {
	if o.strict {
		return loader.StrictDispatcher{}
	}
	return loader.PermissiveDispatcher{}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "classreader",
		Short:        "Inspect JVM class files, directories and archives",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if opts.logFile != "" {
				path = &opts.logFile
			}
			commonlog.Configure(opts.verbose, path)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbose, "verbose", "v", "log more, repeat for debug output")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.BoolVar(&opts.strict, "strict", false, "only read .class, .jar and .zip files")
	flags.BoolVar(&opts.modifiedOnly, "modified-only", false, "skip class files already read unchanged in this run")

	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newSymbolsCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))

	return rootCmd
}
