// Package tui is the interactive front end: three views over one
// app.Controller, drawn with bubbletea and lipgloss.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/zenmap/internal/app"
	"github.com/jeanpaul/zenmap/internal/mindmap"
	"github.com/jeanpaul/zenmap/internal/note"
)

// OrbitSpinner runs while a mind map is being generated.
var OrbitSpinner = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 8,
}

type captureFocus int

const (
	focusContent captureFocus = iota
	focusTags
)

// generatedMsg carries the result of the generation started by startGeneration.
type generatedMsg struct {
	root  *note.MindMapNode
	count int
	err   error
}

type Options struct {
	ProviderName string
	ModelName    string
	Log          logrus.FieldLogger
}

type Model struct {
	ctrl          *app.Controller
	log           logrus.FieldLogger
	width, height int
	providerName  string
	modelName     string

	// capture
	content  textarea.Model
	tagInput textinput.Model
	focus    captureFocus

	// library
	search    textinput.Model
	searching bool
	libCursor int
	confirmID string
	lastDiff  string

	// mind map; collapse state is per session only
	treeCursor int
	collapsed  map[string]bool

	spinner  spinner.Model
	renderer *glamour.TermRenderer
	menu     MenuModel
	showHelp bool

	status    string
	statusErr bool
}

func NewModel(ctrl *app.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Jot something down..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(White)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(DarkGreen)
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(LightGray)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "add a tag and press enter"
	ti.Prompt = "# "

	se := textinput.New()
	se.Placeholder = "search content and tags"
	se.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = OrbitSpinner
	sp.Style = SpinnerStyle

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)

	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	return Model{
		ctrl:         ctrl,
		log:          log.WithField("component", "tui"),
		providerName: opts.ProviderName,
		modelName:    opts.ModelName,
		content:      ta,
		tagInput:     ti,
		search:       se,
		collapsed:    map[string]bool{},
		spinner:      sp,
		renderer:     r,
		menu:         NewMenuModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.content.SetWidth(max(msg.Width-6, 20))
		m.content.SetHeight(max(msg.Height-16, 3))
		m.tagInput.Width = max(msg.Width-10, 10)
		m.search.Width = max(msg.Width-10, 10)
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(max(m.detailWidth()-4, 20))); err == nil {
			m.renderer = r
		}
		return m, nil

	case generatedMsg:
		if err := m.ctrl.CompleteGeneration(msg.root, msg.count, msg.err); err != nil {
			m.setError(err)
			return m, nil
		}
		m.collapsed = map[string]bool{}
		m.treeCursor = 0
		m.setInfo(fmt.Sprintf("Mind map generated from %d notes", msg.count))
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Generating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.menu.active {
		if key == "enter" {
			choice := m.menu.Selected()
			m.menu.active = false
			return m.runCommand(choice)
		}
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.confirmID != "" {
		switch key {
		case "y", "Y":
			id := m.confirmID
			m.confirmID = ""
			if err := m.ctrl.DeleteSnippet(id); err != nil {
				m.setError(err)
			} else {
				m.setInfo("Note deleted")
				m.clampLibraryCursor()
			}
		case "n", "N", "esc":
			m.confirmID = ""
			m.setInfo("Kept")
		}
		return m, nil
	}

	switch key {
	case "ctrl+k":
		m.menu.Open()
		return m, nil
	case "f1":
		return m.switchView(app.ViewCapture)
	case "f2":
		return m.switchView(app.ViewLibrary)
	case "f3":
		return m.switchView(app.ViewMindMap)
	case "tab":
		return m.switchView((m.ctrl.View + 1) % 3)
	case "shift+tab":
		return m.switchView((m.ctrl.View + 2) % 3)
	}

	switch m.ctrl.View {
	case app.ViewCapture:
		return m.updateCapture(msg)
	case app.ViewLibrary:
		return m.updateLibrary(msg)
	default:
		return m.updateMindMap(msg)
	}
}

func (m Model) runCommand(choice string) (tea.Model, tea.Cmd) {
	switch choice {
	case cmdCapture:
		return m.switchView(app.ViewCapture)
	case cmdLibrary:
		return m.switchView(app.ViewLibrary)
	case cmdMap:
		return m.switchView(app.ViewMindMap)
	case cmdGenerate:
		m.ctrl.View = app.ViewMindMap
		focusCmd := m.applyFocus()
		return m, tea.Batch(focusCmd, m.startGeneration())
	case cmdNew:
		m.resetDraft()
		return m.switchView(app.ViewCapture)
	case cmdHelp:
		m.showHelp = true
	case cmdQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) switchView(v app.View) (tea.Model, tea.Cmd) {
	m.ctrl.View = v
	return m, m.applyFocus()
}

// applyFocus focuses the input belonging to the active view and blurs the
// rest.
func (m *Model) applyFocus() tea.Cmd {
	m.content.Blur()
	m.tagInput.Blur()
	if m.ctrl.View != app.ViewLibrary {
		m.searching = false
		m.search.Blur()
	}
	if m.ctrl.View != app.ViewCapture {
		return nil
	}
	if m.focus == focusTags {
		return m.tagInput.Focus()
	}
	return m.content.Focus()
}

func (m Model) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch {
	case m.ctrl.View == app.ViewCapture && m.focus == focusContent:
		m.content, cmd = m.content.Update(msg)
		cmds = append(cmds, cmd)
	case m.ctrl.View == app.ViewCapture:
		m.tagInput, cmd = m.tagInput.Update(msg)
		cmds = append(cmds, cmd)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// startGeneration marks the controller busy and returns the command that
// runs the request off the update loop.
func (m *Model) startGeneration() tea.Cmd {
	snippets, err := m.ctrl.BeginGeneration()
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setInfo("")
	return tea.Batch(m.spinner.Tick, generateCmd(m.ctrl.Generator(), snippets))
}

func generateCmd(gen app.MapGenerator, snippets []note.Snippet) tea.Cmd {
	return func() tea.Msg {
		if gen == nil {
			return generatedMsg{count: len(snippets), err: &mindmap.Error{Kind: mindmap.ErrConfiguration}}
		}
		root, err := gen.Generate(context.Background(), snippets)
		return generatedMsg{root: root, count: len(snippets), err: err}
	}
}

func (m *Model) setError(err error) {
	m.status = mindmap.UserMessage(err)
	m.statusErr = true
}

func (m *Model) setInfo(s string) {
	m.status = s
	m.statusErr = false
}

func (m Model) detailWidth() int {
	return max(m.width/2-2, 30)
}

func (m Model) View() string {
	var body string
	switch m.ctrl.View {
	case app.ViewCapture:
		body = m.captureView()
	case app.ViewLibrary:
		body = m.libraryView()
	default:
		body = m.mindMapView()
	}

	parts := []string{m.headerView(), body, m.statusView(), HelpStyle.Render(" " + m.helpLine())}
	if m.showHelp {
		parts = append(parts, PanelStyle.Render(helpText))
	}
	if m.menu.active {
		parts = append(parts, m.menu.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	tabs := []string{}
	for _, v := range []app.View{app.ViewCapture, app.ViewLibrary, app.ViewMindMap} {
		label := fmt.Sprintf("F%d %s", int(v)+1, v)
		if v == m.ctrl.View {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Center, TitleStyle.Render(" "+Banner+" "), " ", strings.Join(tabs, " "))

	right := DimStyle.Render(fmt.Sprintf("%d notes", len(m.ctrl.Snippets)))
	if m.providerName != "" {
		right = DimStyle.Render(fmt.Sprintf("%d notes  %s / %s", len(m.ctrl.Snippets), m.providerName, m.modelName))
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-1, 1)

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(DimGreen).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) statusView() string {
	switch {
	case m.ctrl.Generating():
		return " " + m.spinner.View() + InfoStyle.Render(" Organizing your notes...")
	case m.confirmID != "":
		return ConfirmStyle.Render(" Delete this note? [y/n]")
	case m.status == "":
		return ""
	case m.statusErr:
		return ErrorStyle.Render(" ✗ " + m.status)
	default:
		return InfoStyle.Render(" " + m.status)
	}
}

func (m Model) helpLine() string {
	switch m.ctrl.View {
	case app.ViewCapture:
		return "ctrl+s: save  •  ctrl+t: content/tags  •  ctrl+d: drop last tag  •  esc: cancel edit  •  tab: next view  •  ctrl+k: menu"
	case app.ViewLibrary:
		return "/: search  •  ↑/↓: move  •  e: edit  •  d: delete  •  tab: next view  •  q: quit"
	default:
		return "↑/↓: move  •  space/←/→: fold  •  enter: details  •  g: generate  •  tab: next view  •  q: quit"
	}
}

const helpText = `Views
  F1 capture   F2 library   F3 mind map   tab / shift+tab cycle

Capture
  ctrl+s save the note      ctrl+t switch between content and tags
  enter  add the typed tag  ctrl+d remove the last tag
  esc    discard the edit

Library
  /  search   e edit   d delete (asks y/n)   esc clear search

Mind map
  g generate   enter show details   esc hide details
  space toggle branch   → expand   ← collapse or go to parent

Anywhere
  ctrl+k command menu   ctrl+c quit

Press any key to close.`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
