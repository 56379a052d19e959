package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SelectionReport renders the outcome of a directive program as markdown.
func SelectionReport(set *selection.Set, outcomes []selection.Outcome) string {
	var sb strings.Builder
	tree := set.Tree()

	sb.WriteString("# Selection\n\n")
	sb.WriteString(fmt.Sprintf("%d of %d nodes enabled, %d signals traced.\n\n",
		set.Len(), tree.Len(), len(set.Signals())))

	if len(outcomes) > 0 {
		sb.WriteString("## Directives\n\n")
		sb.WriteString("| # | directive | target | added | note |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for i, o := range outcomes {
			target, note := "`" + displayPath(o.Target) + "`", ""
			switch {
			case o.Miss:
				target, note = "-", "matches nothing"
			case o.Partial:
				note = "resolved to an ancestor"
			}
			sb.WriteString(fmt.Sprintf("| %d | `%s` | %s | %d | %s |\n", i, o.Directive, target, o.Added, note))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Traced signals\n\n")
	signals := set.Signals()
	if len(signals) == 0 {
		sb.WriteString("_none_\n")
	}
	for _, n := range signals {
		sb.WriteString(fmt.Sprintf("- `%s` (%d bits)\n", n.Path, n.Width))
	}
	return sb.String()
}

// WriteReport renders markdown through glamour on a terminal and as plain text otherwise.
func WriteReport(w io.Writer, markdown string) error {
	if IsTerminal(w) {
		render, err := NewRenderer()
		if err == nil {
			if out, rerr := render(markdown); rerr == nil {
				markdown = out
			}
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
