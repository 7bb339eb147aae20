package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dhamidi/classreader/loader"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// groupStats counts what one top-level input produced.
type groupStats struct {
	name     string
	files    int
	classes  int
	failures int
}

// scanListener prints one progress line per class file and keeps
// per-input counts for the summary.
type scanListener struct {
	loader.BaseLoadListener
	out    io.Writer
	styles scanStyles
	depth  int
	groups []*groupStats
}

func (l *scanListener) current() *groupStats {
	return l.groups[len(l.groups)-1]
}

func (l *scanListener) BeginGroup(e loader.LoadEvent) {
	if l.depth == 0 {
		l.groups = append(l.groups, &groupStats{name: e.Group})
	}
	l.depth++
}

func (l *scanListener) EndGroup(loader.LoadEvent) {
	l.depth--
}

func (l *scanListener) BeginFile(loader.LoadEvent) {
	l.current().files++
}

func (l *scanListener) EndClassfile(e loader.LoadEvent) {
	stats := l.current()
	if e.Err != nil {
		stats.failures++
		fmt.Fprintf(l.out, "%s %s: %v\n", l.styles.fail.Render("[FAIL]"), e.Filename, e.Err)
		return
	}
	stats.classes++
	fmt.Fprintf(l.out, "%s %s (%s)\n", l.styles.ok.Render("[OK]"), e.Filename, e.Classfile.ClassName())
}

type scanStyles struct {
	ok     lipgloss.Style
	fail   lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	total  lipgloss.Style
	border lipgloss.Style
}

// newScanStyles binds the styles to a renderer for w. color is one of
// auto, always or never; auto colors only terminals.
func newScanStyles(w io.Writer, color string) (scanStyles, error) {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	case "auto":
		if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			r.SetColorProfile(termenv.Ascii)
		}
	default:
		return scanStyles{}, fmt.Errorf("unknown color mode: %s (expected auto, always, or never)", color)
	}

	return scanStyles{
		ok:     r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		total:  r.NewStyle().Bold(true).Padding(0, 1),
		border: r.NewStyle().Foreground(lipgloss.Color("#666666")),
	}, nil
}

// summary renders the per-input counts with a totals row.
func (l *scanListener) summary() string {
	var files, classes, failures int
	rows := make([][]string, 0, len(l.groups)+1)
	for _, g := range l.groups {
		files += g.files
		classes += g.classes
		failures += g.failures
		rows = append(rows, []string{g.name, strconv.Itoa(g.files), strconv.Itoa(g.classes), strconv.Itoa(g.failures)})
	}
	rows = append(rows, []string{"total", strconv.Itoa(files), strconv.Itoa(classes), strconv.Itoa(failures)})
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(l.styles.border).
		Headers("INPUT", "FILES", "CLASSES", "FAILURES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return l.styles.header
			case row == last:
				return l.styles.total
			}
			return l.styles.cell
		})
	return t.Render()
}

func newScanCmd(opts *globalOptions) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Decode everything under the given paths and summarize the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			styles, err := newScanStyles(out, color)
			if err != nil {
				return err
			}

			listener := &scanListener{out: out, styles: styles}
			loadErr := loader.New(opts.dispatcher(), listener).Load(cmd.Context(), args...)

			fmt.Fprintln(out)
			fmt.Fprintln(out, listener.summary())

			if loadErr != nil {
				return fmt.Errorf("scan: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "auto", "colorize output (auto, always, never)")

	return cmd
}
