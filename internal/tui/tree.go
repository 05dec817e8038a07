package tui

import (
	"strconv"
	"strings"

	"github.com/jeanpaul/zenmap/internal/note"
)

// treeRow is one visible line of the outline.
type treeRow struct {
	node   *note.MindMapNode
	depth  int
	prefix string // branch connectors drawn before the marker
}

// flattenTree lists the visible nodes of root in display order. Children
// of a node whose id is in collapsed are hidden. Nodes are expanded by
// default.
func flattenTree(root *note.MindMapNode, collapsed map[string]bool) []treeRow {
	if root == nil {
		return nil
	}
	rows := []treeRow{{node: root}}
	if !collapsed[root.ID] {
		appendChildren(&rows, root, "", 1, collapsed)
	}
	return rows
}

func appendChildren(rows *[]treeRow, n *note.MindMapNode, indent string, depth int, collapsed map[string]bool) {
	for i := range n.Children {
		c := &n.Children[i]
		branch, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, next = "└── ", "    "
		}
		*rows = append(*rows, treeRow{node: c, depth: depth, prefix: indent + branch})
		if !collapsed[c.ID] {
			appendChildren(rows, c, indent+next, depth+1, collapsed)
		}
	}
}

func marker(n *note.MindMapNode, collapsed map[string]bool) string {
	switch {
	case !n.HasChildren():
		return "• "
	case collapsed[n.ID]:
		return "▸ "
	default:
		return "▾ "
	}
}

// renderTree draws rows, highlighting the cursor row and the selected
// node. Labels are cut to fit width; a collapsed branch shows how many
// nodes it hides.
func renderTree(rows []treeRow, collapsed map[string]bool, cursor int, selected string, width int) string {
	var sb strings.Builder
	for i, r := range rows {
		n := r.node
		label := marker(n, collapsed) + truncate(n.Label, max(width-len([]rune(r.prefix))-8, 8))

		var text string
		switch {
		case i == cursor:
			text = CursorStyle.Render(label)
		case n.ID == selected:
			text = SelectedNodeStyle.Render(label)
		case r.depth == 0:
			text = RootNodeStyle.Render(label)
		case n.HasChildren():
			text = BranchStyle.Render(label)
		default:
			text = LeafStyle.Render(label)
		}
		if n.HasChildren() && collapsed[n.ID] {
			text += DimStyle.Render(" (" + strconv.Itoa(n.Count()-1) + ")")
		}
		sb.WriteString(ConnectorStyle.Render(r.prefix) + text + "\n")
	}
	return sb.String()
}

// Outline draws the fully expanded tree with no cursor, for printing
// outside the interactive view.
func Outline(root *note.MindMapNode, width int) string {
	return renderTree(flattenTree(root, nil), nil, -1, "", width)
}
