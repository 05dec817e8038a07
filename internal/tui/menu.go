package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Menu commands.
const (
	cmdCapture  = "/capture"
	cmdLibrary  = "/library"
	cmdMap      = "/map"
	cmdGenerate = "/generate"
	cmdNew      = "/new"
	cmdHelp     = "/help"
	cmdQuit     = "/quit"
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

type MenuModel struct {
	list   list.Model
	active bool
}

func NewMenuModel() MenuModel {
	items := []list.Item{
		item{title: cmdCapture, desc: "Write a new note"},
		item{title: cmdLibrary, desc: "Browse and search notes"},
		item{title: cmdMap, desc: "Show the mind map"},
		item{title: cmdGenerate, desc: "Organize all notes into a mind map"},
		item{title: cmdNew, desc: "Discard the current draft"},
		item{title: cmdHelp, desc: "Show key bindings"},
		item{title: cmdQuit, desc: "Exit zenmap"},
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(Accent).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(Accent).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(DarkGreen)

	l := list.New(items, d, 36, 14)
	l.Title = "Commands"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle.MarginLeft(2)

	return MenuModel{list: l}
}

// Open activates the menu with the selection and filter reset.
func (m *MenuModel) Open() {
	m.active = true
	m.list.ResetSelected()
	m.list.ResetFilter()
}

// Selected returns the highlighted command, or "".
func (m MenuModel) Selected() string {
	if it, ok := m.list.SelectedItem().(item); ok {
		return it.title
	}
	return ""
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" && m.list.FilterState() != list.Filtering {
		m.active = false
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m MenuModel) View() string {
	if !m.active {
		return ""
	}
	return MenuBoxStyle.Render(m.list.View())
}
