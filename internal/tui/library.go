package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxDiffLines = 12

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.searching {
		switch key {
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.ctrl.SearchTerm = ""
			m.clampLibraryCursor()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.ctrl.SearchTerm = m.search.Value()
		m.clampLibraryCursor()
		return m, cmd
	}

	visible := m.ctrl.Filtered()
	switch key {
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		if m.ctrl.SearchTerm != "" {
			m.search.SetValue("")
			m.ctrl.SearchTerm = ""
			m.clampLibraryCursor()
		}
		m.lastDiff = ""
	case "up", "k":
		if m.libCursor > 0 {
			m.libCursor--
		}
	case "down", "j":
		if m.libCursor < len(visible)-1 {
			m.libCursor++
		}
	case "home":
		m.libCursor = 0
	case "end":
		m.libCursor = max(len(visible)-1, 0)
	case "e", "enter":
		if len(visible) > 0 {
			return m, m.startEdit(visible[m.libCursor].ID)
		}
	case "d", "delete":
		if len(visible) > 0 {
			m.confirmID = visible[m.libCursor].ID
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) clampLibraryCursor() {
	n := len(m.ctrl.Filtered())
	if m.libCursor >= n {
		m.libCursor = n - 1
	}
	if m.libCursor < 0 {
		m.libCursor = 0
	}
}

func (m Model) libraryView() string {
	visible := m.ctrl.Filtered()
	width := max(m.width-2, 30)

	searchBox := InputBorderStyle
	if m.searching {
		searchBox = InputActiveStyle
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		searchBox.Width(width).Render(m.search.View()),
		DimStyle.Render(fmt.Sprintf(" %d of %d notes", len(visible), len(m.ctrl.Snippets))),
	)

	if len(m.ctrl.Snippets) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", DimStyle.Render(" Nothing captured yet. Press F1 to write your first note."))
	}
	if len(visible) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", DimStyle.Render(" No note matches."))
	}

	diff := m.diffView()
	rowsAvail := max(m.height-10-lipgloss.Height(diff), 3)
	start := 0
	if m.libCursor >= rowsAvail {
		start = m.libCursor - rowsAvail + 1
	}
	end := min(start+rowsAvail, len(visible))

	var sb strings.Builder
	for i := start; i < end; i++ {
		s := visible[i]
		first, _, _ := strings.Cut(strings.TrimSpace(s.Content), "\n")
		date := s.Updated().Format("2006-01-02 15:04")
		tags := ""
		if len(s.Tags) > 0 {
			tags = " #" + strings.Join(s.Tags, " #")
		}
		line := truncate(first, max(width-len(date)-len(tags)-6, 10))

		if i == m.libCursor {
			sb.WriteString(CursorStyle.Render(" "+line+" ") + DimStyle.Render(tags) + "  " + DimStyle.Render(date) + "\n")
		} else {
			sb.WriteString(" " + LeafStyle.Render(line) + InfoStyle.Render(tags) + "  " + DimStyle.Render(date) + "\n")
		}
	}

	parts := []string{header, sb.String()}
	if diff != "" {
		parts = append(parts, diff)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// diffView shows the last edit as a coloured unified diff.
func (m Model) diffView() string {
	if m.lastDiff == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(m.lastDiff, "\n"), "\n")
	if len(lines) > maxDiffLines {
		lines = append(lines[:maxDiffLines], "...")
	}
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"), strings.HasPrefix(l, "@@"):
			lines[i] = DimStyle.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = DiffAddStyle.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = DiffDelStyle.Render(l)
		}
	}
	return PanelStyle.Render(TitleStyle.Render("Last edit") + "\n" + strings.Join(lines, "\n"))
}
