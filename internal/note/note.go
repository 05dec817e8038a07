// Package note holds the records zenmap persists: snippets and the
// generated mind-map snapshot.
package note

import (
	"strconv"
	"time"
)

// RootID is assigned to a generated tree whose root arrives without an id.
const RootID = "root"

// Snippet is a single user-authored note.
type Snippet struct {
	ID        string   `json:"id" yaml:"id" validate:"required"`
	Content   string   `json:"content" yaml:"content" validate:"notblank"`
	Tags      []string `json:"tags" yaml:"tags" validate:"dive,notblank"`
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"` // epoch ms
	UpdatedAt int64    `json:"updatedAt" yaml:"updatedAt"` // epoch ms
}

func (s Snippet) Created() time.Time { return time.UnixMilli(s.CreatedAt) }

func (s Snippet) Updated() time.Time { return time.UnixMilli(s.UpdatedAt) }

// MindMapNode is one topic in the generated tree.
type MindMapNode struct {
	ID          string        `json:"id" yaml:"id"`
	Label       string        `json:"label" yaml:"label"`
	Description string        `json:"description" yaml:"description,omitempty"`
	Children    []MindMapNode `json:"children" yaml:"children,omitempty"`
	Color       string        `json:"color,omitempty" yaml:"color,omitempty"`
}

// MindMapData is the single retained generation result.
type MindMapData struct {
	ID           string      `json:"id" yaml:"id"`
	Root         MindMapNode `json:"root" yaml:"root"`
	CreatedAt    int64       `json:"createdAt" yaml:"createdAt"`
	SnippetCount int         `json:"snippetCount" yaml:"snippetCount"`
}

func (m MindMapData) Created() time.Time { return time.UnixMilli(m.CreatedAt) }

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// HasChildren reports whether n has at least one child.
func (n *MindMapNode) HasChildren() bool { return len(n.Children) > 0 }

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn stops the walk.
func (n *MindMapNode) Walk(fn func(node *MindMapNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *MindMapNode) walk(fn func(*MindMapNode, int) bool, depth int) bool {
	if !fn(n, depth) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Find returns the first node with the given id, or nil.
func (n *MindMapNode) Find(id string) *MindMapNode {
	var found *MindMapNode
	n.Walk(func(node *MindMapNode, _ int) bool {
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the tree rooted at n.
func (n *MindMapNode) Count() int {
	total := 0
	n.Walk(func(*MindMapNode, int) bool {
		total++
		return true
	})
	return total
}

// Depth returns the number of levels in the tree rooted at n.
func (n *MindMapNode) Depth() int {
	max := 0
	n.Walk(func(_ *MindMapNode, d int) bool {
		if d+1 > max {
			max = d + 1
		}
		return true
	})
	return max
}

// ChildID builds the synthetic id of the i-th (0-based) child of parent.
func ChildID(parent string, i int) string {
	return parent + "." + strconv.Itoa(i+1)
}
