package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/zenmap/internal/note"
)

func (m Model) treeRows() []treeRow {
	if m.ctrl.MindMap == nil {
		return nil
	}
	return flattenTree(&m.ctrl.MindMap.Root, m.collapsed)
}

func (m Model) updateMindMap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "g":
		return m, m.startGeneration()
	case "/":
		m.menu.Open()
		return m, nil
	case "q":
		return m, tea.Quit
	case "esc":
		m.ctrl.Selected = ""
		return m, nil
	}

	rows := m.treeRows()
	if len(rows) == 0 {
		return m, nil
	}
	m.treeCursor = min(m.treeCursor, len(rows)-1)
	cur := rows[m.treeCursor]

	switch msg.String() {
	case "up", "k":
		if m.treeCursor > 0 {
			m.treeCursor--
		}
	case "down", "j":
		if m.treeCursor < len(rows)-1 {
			m.treeCursor++
		}
	case "home":
		m.treeCursor = 0
	case "end":
		m.treeCursor = len(rows) - 1
	case " ":
		if cur.node.HasChildren() {
			m.toggle(cur.node.ID)
		}
	case "right", "l":
		delete(m.collapsed, cur.node.ID)
	case "left", "h":
		if cur.node.HasChildren() && !m.collapsed[cur.node.ID] {
			m.collapsed[cur.node.ID] = true
			break
		}
		for i := m.treeCursor - 1; i >= 0; i-- {
			if rows[i].depth == cur.depth-1 {
				m.treeCursor = i
				break
			}
		}
	case "enter":
		m.ctrl.SelectNode(cur.node.ID)
	}
	return m, nil
}

func (m *Model) toggle(id string) {
	if m.collapsed[id] {
		delete(m.collapsed, id)
	} else {
		m.collapsed[id] = true
	}
}

func (m Model) mindMapView() string {
	if m.ctrl.MindMap == nil {
		msg := fmt.Sprintf(" No mind map yet. Press g to organize your %d notes.", len(m.ctrl.Snippets))
		if len(m.ctrl.Snippets) == 0 {
			msg = " No mind map yet. Capture a few notes first, then press g."
		}
		return "\n" + DimStyle.Render(msg)
	}

	mm := m.ctrl.MindMap
	meta := DimStyle.Render(fmt.Sprintf(" Generated %s from %d notes",
		mm.Created().Format("2006-01-02 15:04"), mm.SnippetCount))
	if mm.SnippetCount != len(m.ctrl.Snippets) {
		meta += ConfirmStyle.Render(fmt.Sprintf("  (library now has %d, press g to refresh)", len(m.ctrl.Snippets)))
	}

	selected := m.ctrl.SelectedNode()
	treeWidth := max(m.width-2, 30)
	if selected != nil {
		treeWidth = max(m.width-m.detailWidth()-4, 20)
	}

	rows := m.treeRows()
	avail := max(m.height-8, 5)
	start := 0
	if m.treeCursor >= avail {
		start = m.treeCursor - avail + 1
	}
	end := min(start+avail, len(rows))
	tree := renderTree(rows[start:end], m.collapsed, m.treeCursor-start, m.ctrl.Selected, treeWidth)
	tree = lipgloss.NewStyle().Width(treeWidth).Render(strings.TrimRight(tree, "\n"))

	body := tree
	if selected != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, tree, "  ", m.detailView(selected))
	}
	return lipgloss.JoinVertical(lipgloss.Left, meta, "", body)
}

func (m Model) detailView(n *note.MindMapNode) string {
	width := m.detailWidth()

	desc := strings.TrimSpace(n.Description)
	if desc == "" {
		desc = DimStyle.Render("No description yet.")
	} else if m.renderer != nil {
		if out, err := m.renderer.Render(desc); err == nil {
			desc = strings.Trim(out, "\n")
		}
	}

	parts := []string{
		TitleStyle.Render(n.Label),
		DimStyle.Render("id " + shortID(n.ID)),
		"",
		BranchStyle.Render("Summary"),
		desc,
	}
	if n.HasChildren() {
		parts = append(parts, "", BranchStyle.Render("Topics"))
		for _, c := range n.Children {
			parts = append(parts, " • "+c.Label)
		}
	}
	return PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
