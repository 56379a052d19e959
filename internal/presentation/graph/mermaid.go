package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/pkg/domain"
)

// GraphOverlay contains selection data to visualize on the graph.
type GraphOverlay struct {
	Enabled []string
	// Targets are the nodes directives resolved to.
	Targets []string
}

// GenerateMermaid produces a Mermaid flowchart of the scope tree.
// Shapes:
// - Root: ((Circle))
// - Scope: [Rectangle]
// - Signal: ([Stadium]) labelled with its width
// Overlay styles mark enabled nodes and directive targets.
func GenerateMermaid(tree *scopetree.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	tree.Walk(func(n *domain.ScopeNode) bool {
		id := mermaidID(n)
		switch {
		case n.IsRoot():
			sb.WriteString(fmt.Sprintf("    %s((\"(root)\"))\n", id))
		case n.IsSignal():
			sb.WriteString(fmt.Sprintf("    %s([\"%s [%d]\"])\n", id, escape(n.Name), n.Width))
		default:
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escape(n.Name)))
		}
		if n.Parent != nil {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(n.Parent), id))
		}
		return true
	})

	if overlay != nil {
		sb.WriteString("\n    %% Selection Styles\n")
		sb.WriteString("    classDef enabled fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, tree, overlay.Enabled, "enabled")
		writeClass(&sb, tree, overlay.Targets, "target")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, tree *scopetree.Tree, paths []string, class string) {
	seen := make(map[int]bool)
	for _, p := range paths {
		n, ok := tree.Resolve(p)
		if !ok || seen[n.Index] {
			continue
		}
		seen[n.Index] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", mermaidID(n), class))
	}
}

// mermaidID derives the node id from the pre-order index, since dots and
// underscores in paths would collide once sanitized.
func mermaidID(n *domain.ScopeNode) string {
	return fmt.Sprintf("n%d", n.Index)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
