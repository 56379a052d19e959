package tui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/olekukonko/tablewriter"
)

// ScopeTable lists every node of tree. When set is not nil, an extra column shows
// whether the node is enabled and its remaining depth budget.
func ScopeTable(w io.Writer, tree *scopetree.Tree, set *selection.Set) {
	table := tablewriter.NewWriter(w)
	header := []string{"Path", "Kind", "Width", "Depth"}
	if set != nil {
		header = append(header, "Traced")
	}
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER})

	for _, n := range tree.Nodes() {
		if n.IsRoot() {
			continue
		}
		width := ""
		if n.IsSignal() {
			width = strconv.Itoa(n.Width)
		}
		row := []string{n.Path, n.Kind.String(), width, strconv.Itoa(n.Depth)}
		if set != nil {
			row = append(row, traced(set, n))
		}
		table.Append(row)
	}

	footer := []string{fmt.Sprintf("%d nodes", tree.Len()), "", fmt.Sprintf("%d signals", len(tree.Signals())), ""}
	if set != nil {
		footer = append(footer, fmt.Sprintf("%d enabled", set.Len()))
	}
	table.SetFooter(footer)
	table.Render()
}

func traced(set *selection.Set, n *domain.ScopeNode) string {
	budget, ok := set.Budget(n)
	switch {
	case !ok:
		return ""
	case budget < 0:
		return "yes (all)"
	default:
		return fmt.Sprintf("yes (%d)", budget)
	}
}

// RunSummary is what the run command reports after closing the trace.
type RunSummary struct {
	Output    string
	Format    string
	Policy    string
	Signals   int
	Steps     uint64
	LastTime  uint64
	Truncated bool
	// Metrics holds the collector totals, keyed by metric name. Empty when
	// metrics are disabled.
	Metrics map[string]float64
}

// SummaryTable writes s as a two-column table.
func SummaryTable(w io.Writer, s RunSummary) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
	table.AppendBulk([][]string{
		{"output", s.Output},
		{"format", s.Format},
		{"policy", s.Policy},
		{"signals", strconv.Itoa(s.Signals)},
		{"dumps", strconv.FormatUint(s.Steps, 10)},
		{"last time", strconv.FormatUint(s.LastTime, 10)},
		{"truncated", strconv.FormatBool(s.Truncated)},
	})
	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		table.Append([]string{strings.TrimPrefix(name, "scopetrace_"), strconv.FormatFloat(s.Metrics[name], 'f', -1, 64)})
	}
	table.Render()
}
