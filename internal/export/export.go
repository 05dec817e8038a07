// Package export writes the mind map and the snippet library to files
// other tools can open.
package export

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/zenmap/internal/note"
)

// Formats lists the names accepted by the CLI export command.
var Formats = []string{"markdown", "yaml", "xlsx"}

// Markdown renders the map as a nested bullet outline, descriptions
// indented under their node.
func Markdown(w io.Writer, m note.MindMapData) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.Root.Label)
	if m.Root.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", m.Root.Description)
	}
	fmt.Fprintf(&sb, "_Generated %s from %d notes._\n\n", m.Created().Format("2006-01-02 15:04"), m.SnippetCount)

	for i := range m.Root.Children {
		m.Root.Children[i].Walk(func(n *note.MindMapNode, depth int) bool {
			indent := strings.Repeat("  ", depth)
			fmt.Fprintf(&sb, "%s- **%s**\n", indent, n.Label)
			if d := strings.TrimSpace(n.Description); d != "" {
				for _, line := range strings.Split(d, "\n") {
					fmt.Fprintf(&sb, "%s  %s\n", indent, line)
				}
			}
			return true
		})
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// YAML writes the whole snapshot as a YAML document.
func YAML(w io.Writer, m note.MindMapData) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
