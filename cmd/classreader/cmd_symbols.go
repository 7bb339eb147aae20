package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dhamidi/classreader/format"
	"github.com/dhamidi/classreader/loader"
	"github.com/spf13/cobra"
)

func newSymbolsCmd(opts *globalOptions) *cobra.Command {
	var kinds []string
	var match string

	cmd := &cobra.Command{
		Use:   "symbols <path>...",
		Short: "List classes, fields, methods and local variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range kinds {
				switch format.SymbolKind(k) {
				case format.SymbolClass, format.SymbolField, format.SymbolMethod, format.SymbolLocal:
				default:
					return fmt.Errorf("unknown symbol kind: %s (expected class, field, method, or local)", k)
				}
			}

			repo := loader.NewRepository()
			loadErr := loader.New(opts.dispatcher(), repo).Load(cmd.Context(), args...)

			gatherer := format.NewSymbolGatherer()
			gatherer.Filter = func(s format.Symbol) bool {
				if len(kinds) > 0 && !slices.Contains(kinds, string(s.Kind)) {
					return false
				}
				return strings.Contains(strings.ToLower(s.Name), strings.ToLower(match))
			}

			out := cmd.OutOrStdout()
			for _, s := range gatherer.Gather(repo.Classfiles()...) {
				fmt.Fprintf(out, "%s\t%s\t%s\n", s.Kind, s.Name, s.Declaration)
			}

			if loadErr != nil {
				return fmt.Errorf("load: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "only list these kinds (class, field, method, local)")
	cmd.Flags().StringVarP(&match, "match", "m", "", "only list symbols whose name contains this text")

	return cmd
}
