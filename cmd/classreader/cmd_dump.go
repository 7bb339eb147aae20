package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classreader/format"
	"github.com/dhamidi/classreader/loader"
	"github.com/spf13/cobra"
)

// encodeListener writes every decoded class as soon as it is complete.
type encodeListener struct {
	loader.BaseLoadListener
	encoder format.Encoder
	err     error
}

func (l *encodeListener) EndClassfile(e loader.LoadEvent) {
	if e.Classfile == nil || l.err != nil {
		return
	}
	if err := l.encoder.Encode(e.Classfile); err != nil {
		l.err = fmt.Errorf("encode %s: %w", e.Filename, err)
	}
}

func newDumpCmd(opts *globalOptions) *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <path>...",
		Short: "Print every class found in the given class files, directories and archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, err := format.New(dumpFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			listener := &encodeListener{encoder: encoder}
			loadErr := loader.New(opts.dispatcher(), listener).Load(cmd.Context(), args...)
			if listener.err != nil {
				return listener.err
			}
			if loadErr != nil {
				return fmt.Errorf("load: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "text",
		fmt.Sprintf("output format (%s)", strings.Join(format.Names(), ", ")))

	return cmd
}
