package mindmap

import (
	"fmt"
	"strings"

	"github.com/jeanpaul/zenmap/internal/note"
)

// RootLabel is the title the service is asked to give the root node.
const RootLabel = "My Knowledge Base"

// ShapeDepth is how many node levels the requested output shape spells out.
// Structured-output APIs reject recursive schemas, so the shape is unrolled.
const ShapeDepth = 4

const noteSeparator = "\n\n----------------\n\n"

const instructions = `You are an expert in personal knowledge management. I have a pile of scattered note fragments.
Organize them into a clearly structured mind map.

Requirements:
1. The root node is "` + RootLabel + `".
2. Read every note and derive a handful of first-level topics by clustering their subject matter.
3. Under each first-level topic, break the material down into second-level topics or concrete points.
4. Give every node a brief "label" (title) and a detailed "description".
5. A description synthesizes all notes folded into that node; it does not list them. Keep important details, including code fragments and key figures.
6. Keep the structure shallow: 3-4 levels at most.

Answer with JSON matching the requested schema.`

// Instructions returns the system prompt sent with every generation.
func Instructions() string { return instructions }

// BuildPrompt renders the snippets as the text payload of a generation.
func BuildPrompt(snippets []note.Snippet) string {
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = fmt.Sprintf("[Note %d] (Created: %s) (Tags: %s)\n%s",
			i+1, s.Created().Format("2006-01-02"), strings.Join(s.Tags, ", "), s.Content)
	}
	return strings.Join(parts, noteSeparator)
}

// ResponseShape is the output shape requested from the service: depth
// levels of {id, label, description, children[]}.
func ResponseShape(depth int) map[string]any {
	node := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "string"},
			"label":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
		},
		"required": []string{"id", "label", "description"},
	}
	items := map[string]any{"type": "object"}
	if depth > 1 {
		items = ResponseShape(depth - 1)
	}
	node["properties"].(map[string]any)["children"] = map[string]any{
		"type":  "array",
		"items": items,
	}
	return node
}

// NodeSchema validates an answer before it is decoded. Unlike
// ResponseShape it is recursive, so any depth is accepted.
var NodeSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"$ref":    "#/definitions/node",
	"definitions": map[string]any{
		"node": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":          map[string]any{"type": "string"},
				"label":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"color":       map[string]any{"type": "string"},
				"children": map[string]any{
					"type":  []string{"array", "null"},
					"items": map[string]any{"$ref": "#/definitions/node"},
				},
			},
			"required": []string{"label"},
		},
	},
}
