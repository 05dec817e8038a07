package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/zenmap/internal/app"
)

func (m Model) updateCapture(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.saveDraft()
		return m, m.applyFocus()

	case "ctrl+t":
		if m.focus == focusContent {
			m.focus = focusTags
		} else {
			m.focus = focusContent
		}
		return m, m.applyFocus()

	case "ctrl+d":
		m.ctrl.Tags.RemoveLast()
		return m, nil

	case "esc":
		if m.ctrl.EditingID != "" {
			m.resetDraft()
			m.setInfo("Edit discarded")
		}
		return m, nil

	case "/":
		if m.focus == focusContent && m.content.Value() == "" {
			m.menu.Open()
			return m, nil
		}

	case "enter":
		if m.focus == focusTags {
			m.submitTag()
			return m, nil
		}
	}
	return m.forwardToInputs(msg)
}

func (m *Model) submitTag() {
	m.ctrl.Tags.SetInput(m.tagInput.Value())
	if m.ctrl.Tags.Submit() {
		m.tagInput.Reset()
		return
	}
	if strings.TrimSpace(m.tagInput.Value()) != "" {
		m.setInfo("Tag already added")
	}
}

// saveDraft commits a pending tag, then saves the note. After an edit the
// controller moves to the library, where the diff of the change is shown.
func (m *Model) saveDraft() {
	if strings.TrimSpace(m.tagInput.Value()) != "" {
		m.submitTag()
	}
	m.ctrl.Content = m.content.Value()

	var before string
	editing := m.ctrl.EditingID != ""
	if editing {
		if prev, ok := m.ctrl.Snippet(m.ctrl.EditingID); ok {
			before = prev.Content
		}
	}

	sn, err := m.ctrl.SaveSnippet()
	if err != nil {
		m.setError(err)
		return
	}
	m.content.Reset()
	m.tagInput.Reset()
	m.focus = focusContent
	if editing {
		m.lastDiff = app.Diff(before, sn.Content)
		m.setInfo("Note updated")
		return
	}
	m.lastDiff = ""
	m.setInfo(fmt.Sprintf("Saved (%d notes)", len(m.ctrl.Snippets)))
}

func (m *Model) resetDraft() {
	m.ctrl.ResetEditor()
	m.content.Reset()
	m.tagInput.Reset()
	m.focus = focusContent
}

// startEdit loads snippet id into the capture inputs.
func (m *Model) startEdit(id string) tea.Cmd {
	if err := m.ctrl.StartEdit(id); err != nil {
		m.setError(err)
		return nil
	}
	m.content.SetValue(m.ctrl.Content)
	m.tagInput.Reset()
	m.focus = focusContent
	m.setInfo("Editing note")
	return m.applyFocus()
}

func (m Model) captureView() string {
	title := "New note"
	if m.ctrl.EditingID != "" {
		title = "Editing note " + shortID(m.ctrl.EditingID)
	}

	contentBox, tagBox := InputBorderStyle, InputBorderStyle
	if m.focus == focusContent {
		contentBox = InputActiveStyle
	} else {
		tagBox = InputActiveStyle
	}
	width := max(m.width-2, 20)

	chips := make([]string, 0, len(m.ctrl.Tags.Tags()))
	for _, t := range m.ctrl.Tags.Tags() {
		chips = append(chips, TagChipStyle.Render(t))
	}
	tagLine := DimStyle.Render("no tags")
	if len(chips) > 0 {
		tagLine = strings.Join(chips, " ")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(" "+title),
		contentBox.Width(width).Render(m.content.View()),
		" "+tagLine,
		tagBox.Width(width).Render(m.tagInput.View()),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
