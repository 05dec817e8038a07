package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/zenmap/internal/app"
	"github.com/jeanpaul/zenmap/internal/kv"
	"github.com/jeanpaul/zenmap/internal/mindmap"
	"github.com/jeanpaul/zenmap/internal/note"
	"github.com/jeanpaul/zenmap/internal/store"
)

type stubGenerator struct {
	root *note.MindMapNode
	err  error
}

func (s stubGenerator) Generate(context.Context, []note.Snippet) (*note.MindMapNode, error) {
	return s.root, s.err
}

func sampleTree() *note.MindMapNode {
	return &note.MindMapNode{
		ID: "root", Label: "My Knowledge Base",
		Children: []note.MindMapNode{
			{ID: "go", Label: "Go", Description: "Concurrency notes", Children: []note.MindMapNode{
				{ID: "go.1", Label: "Channels"},
				{ID: "go.2", Label: "Context"},
			}},
			{ID: "cook", Label: "Cooking"},
		},
	}
}

func newTestModel(t *testing.T, gen app.MapGenerator) Model {
	t.Helper()
	sub, err := kv.OpenFile(t.TempDir())
	require.NoError(t, err)
	ctrl := app.New(store.New(sub, nil), gen)
	m := NewModel(ctrl, Options{ProviderName: "google", ModelName: "gemini-2.5-flash"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "f1":
			msg = tea.KeyMsg{Type: tea.KeyF1}
		case "f2":
			msg = tea.KeyMsg{Type: tea.KeyF2}
		case "f3":
			msg = tea.KeyMsg{Type: tea.KeyF3}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		case "ctrl+k":
			msg = tea.KeyMsg{Type: tea.KeyCtrlK}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, c := m.Update(msg)
		m = updated.(Model)
		cmd = c
	}
	return m, cmd
}

func saveNote(t *testing.T, m Model, content string, tags ...string) Model {
	t.Helper()
	m, _ = press(t, m, "f1", content)
	if len(tags) > 0 {
		m, _ = press(t, m, "ctrl+t")
		for _, tg := range tags {
			m, _ = press(t, m, tg, "enter")
		}
	}
	m, _ = press(t, m, "ctrl+s")
	return m
}

func TestViewSwitching(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Equal(t, app.ViewCapture, m.ctrl.View)

	m, _ = press(t, m, "tab")
	assert.Equal(t, app.ViewLibrary, m.ctrl.View)
	m, _ = press(t, m, "tab")
	assert.Equal(t, app.ViewMindMap, m.ctrl.View)
	m, _ = press(t, m, "tab")
	assert.Equal(t, app.ViewCapture, m.ctrl.View)

	m, _ = press(t, m, "f3")
	assert.Equal(t, app.ViewMindMap, m.ctrl.View)
	assert.Contains(t, m.View(), "No mind map yet")
}

func TestCaptureSavesWithTags(t *testing.T) {
	m := newTestModel(t, nil)
	m = saveNote(t, m, "hello world", "go", "notes")

	require.Len(t, m.ctrl.Snippets, 1)
	sn := m.ctrl.Snippets[0]
	assert.Equal(t, "hello world", sn.Content)
	assert.Equal(t, []string{"go", "notes"}, sn.Tags)
	assert.Empty(t, m.content.Value())
	assert.Empty(t, m.ctrl.Tags.Tags())
	assert.False(t, m.statusErr)
}

func TestCaptureRejectsEmpty(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+s")
	assert.True(t, m.statusErr)
	assert.Equal(t, app.ErrEmptyContent.Error(), m.status)
	assert.Empty(t, m.ctrl.Snippets)
}

func TestCaptureRemoveLastTag(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+t", "a", "enter", "b", "enter", "ctrl+d")
	assert.Equal(t, []string{"a"}, m.ctrl.Tags.Tags())

	m, _ = press(t, m, "a", "enter")
	assert.Equal(t, []string{"a"}, m.ctrl.Tags.Tags())
	assert.Equal(t, "a", m.tagInput.Value(), "a rejected tag stays in the input")
	assert.Equal(t, "Tag already added", m.status)
}

func TestLibrarySearchAndDelete(t *testing.T) {
	m := newTestModel(t, nil)
	m = saveNote(t, m, "alpha note", "x")
	m = saveNote(t, m, "beta note", "y")

	m, _ = press(t, m, "f2", "/", "B", "E", "T", "A")
	require.Len(t, m.ctrl.Filtered(), 1)
	assert.Equal(t, "beta note", m.ctrl.Filtered()[0].Content)
	m, _ = press(t, m, "enter")
	assert.False(t, m.searching)

	m, _ = press(t, m, "d")
	assert.NotEmpty(t, m.confirmID)
	assert.Contains(t, m.View(), "Delete this note? [y/n]")

	m, _ = press(t, m, "n")
	assert.Empty(t, m.confirmID)
	assert.Len(t, m.ctrl.Snippets, 2)

	m, _ = press(t, m, "d", "y")
	require.Len(t, m.ctrl.Snippets, 1)
	assert.Equal(t, "alpha note", m.ctrl.Snippets[0].Content)
}

func TestLibraryEditShowsDiff(t *testing.T) {
	m := newTestModel(t, nil)
	m = saveNote(t, m, "first")

	m, _ = press(t, m, "f2", "e")
	assert.Equal(t, app.ViewCapture, m.ctrl.View)
	assert.Equal(t, "first", m.content.Value())

	m, _ = press(t, m, "!", "ctrl+s")
	assert.Equal(t, app.ViewLibrary, m.ctrl.View)
	assert.Equal(t, "first!", m.ctrl.Snippets[0].Content)
	assert.Contains(t, m.lastDiff, "+first!")
	assert.Contains(t, m.View(), "Last edit")
}

func TestGenerateFlow(t *testing.T) {
	m := newTestModel(t, stubGenerator{root: sampleTree()})
	m = saveNote(t, m, "channels")

	m, cmd := press(t, m, "f3", "g")
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.Generating())

	m, _ = press(t, m, "g")
	assert.True(t, m.statusErr)
	assert.Equal(t, app.ErrBusy.Error(), m.status)

	msg := generateCmd(m.ctrl.Generator(), m.ctrl.Snippets)()
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.ctrl.Generating())
	require.NotNil(t, m.ctrl.MindMap)
	assert.Equal(t, 1, m.ctrl.MindMap.SnippetCount)
	view := m.View()
	assert.Contains(t, view, "├── ")
	assert.Contains(t, view, "Channels")
}

func TestGenerateFailureClearsFlag(t *testing.T) {
	m := newTestModel(t, stubGenerator{err: &mindmap.Error{Kind: mindmap.ErrGenerationFailed, Err: errors.New("503")}})
	m = saveNote(t, m, "x")

	m, _ = press(t, m, "f3", "g")
	updated, _ := m.Update(generateCmd(m.ctrl.Generator(), m.ctrl.Snippets)())
	m = updated.(Model)

	assert.False(t, m.ctrl.Generating())
	assert.True(t, m.statusErr)
	assert.Equal(t, mindmap.ErrGenerationFailed.Error(), m.status)
	assert.NotContains(t, m.status, "503")
}

func TestGenerateEmptyLibrary(t *testing.T) {
	m := newTestModel(t, stubGenerator{root: sampleTree()})
	m, cmd := press(t, m, "f3", "g")
	assert.Nil(t, cmd)
	assert.False(t, m.ctrl.Generating())
	assert.Equal(t, mindmap.ErrEmptyInput.Error(), m.status)
}

func TestMindMapNavigation(t *testing.T) {
	m := newTestModel(t, stubGenerator{root: sampleTree()})
	m = saveNote(t, m, "x")
	m, _ = press(t, m, "f3", "g")
	updated, _ := m.Update(generateCmd(m.ctrl.Generator(), m.ctrl.Snippets)())
	m = updated.(Model)
	assert.Equal(t, "root", m.ctrl.Selected)

	// root, go, go.1, go.2, cook
	assert.Len(t, m.treeRows(), 5)

	m, _ = press(t, m, "down", "space")
	assert.True(t, m.collapsed["go"])
	assert.Len(t, m.treeRows(), 3)

	m, _ = press(t, m, "space", "down", "left")
	assert.Equal(t, 1, m.treeCursor, "left on a leaf moves to its parent")

	m, _ = press(t, m, "enter")
	assert.Equal(t, "go", m.ctrl.Selected)
	view := m.View()
	assert.Contains(t, view, "Summary")
	assert.Contains(t, view, "Topics")

	m, _ = press(t, m, "esc")
	assert.Empty(t, m.ctrl.Selected)
}

func TestMenu(t *testing.T) {
	m := newTestModel(t, nil)
	assert.False(t, m.menu.active)

	m, _ = press(t, m, "/")
	assert.True(t, m.menu.active, "/ opens the menu when the editor is empty")
	assert.Contains(t, m.View(), "/library")

	m, _ = press(t, m, "esc")
	assert.False(t, m.menu.active)

	m, _ = press(t, m, "ctrl+k", "down", "enter")
	assert.False(t, m.menu.active)
	assert.Equal(t, app.ViewLibrary, m.ctrl.View)
}

func TestSlashTypesWhenDraftNotEmpty(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "a", "/")
	assert.False(t, m.menu.active)
	assert.True(t, strings.HasSuffix(m.content.Value(), "a/"))
}
