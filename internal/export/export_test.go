package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/zenmap/internal/note"
)

func sampleMap() note.MindMapData {
	return note.MindMapData{
		ID:           "run-1",
		CreatedAt:    time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local).UnixMilli(),
		SnippetCount: 3,
		Root: note.MindMapNode{
			ID: "root", Label: "My Knowledge Base", Description: "everything",
			Children: []note.MindMapNode{
				{ID: "go", Label: "Go", Description: "line one\nline two", Children: []note.MindMapNode{
					{ID: "go.1", Label: "Channels"},
				}},
				{ID: "cook", Label: "Cooking"},
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleMap()))

	want := "# My Knowledge Base\n\n" +
		"everything\n\n" +
		"_Generated 2024-05-01 09:30 from 3 notes._\n\n" +
		"- **Go**\n" +
		"  line one\n" +
		"  line two\n" +
		"  - **Channels**\n" +
		"- **Cooking**\n"
	assert.Equal(t, want, buf.String())
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	m := sampleMap()
	require.NoError(t, YAML(&buf, m))

	var back note.MindMapData
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, m.Root.Children[0].Children[0].Label, back.Root.Children[0].Children[0].Label)
	assert.Equal(t, m.SnippetCount, back.SnippetCount)
	assert.Contains(t, buf.String(), "snippetCount: 3")
}

func TestWorkbook(t *testing.T) {
	snippets := []note.Snippet{
		{ID: "b", Content: "world", Tags: []string{"x", "y"}, CreatedAt: 2000, UpdatedAt: 2000},
		{ID: "a", Content: "hello", CreatedAt: 1000, UpdatedAt: 1000},
	}
	m := sampleMap()

	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, snippets, &m))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{notesSheet, mapSheet}, f.GetSheetList())

	rows, err := f.GetRows(notesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Content", rows[0][1])
	assert.Equal(t, []string{"b", "world", "x, y"}, rows[1][:3])

	nodes, err := f.GetRows(mapSheet)
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	assert.Equal(t, []string{"2", "go.1", "Channels"}, nodes[3][:3])
}

func TestWorkbook_NoMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, nil, nil))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{notesSheet}, f.GetSheetList())
}
