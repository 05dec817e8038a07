// Package tags edits the tag list of the snippet being captured.
package tags

import (
	"slices"
	"strings"
)

// Add returns tags with text appended. Text is trimmed first; empty text
// and exact (case-sensitive) duplicates leave the list unchanged.
func Add(tags []string, text string) []string {
	t := strings.TrimSpace(text)
	if t == "" || slices.Contains(tags, t) {
		return tags
	}
	out := make([]string, len(tags), len(tags)+1)
	copy(out, tags)
	return append(out, t)
}

// Remove returns tags without any entry equal to text.
func Remove(tags []string, text string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != text {
			out = append(out, t)
		}
	}
	return out
}

// Editor holds a tag list and the pending input it is being extended with.
type Editor struct {
	tags  []string
	input string
}

// NewEditor starts an editor from an existing list, copied.
func NewEditor(initial []string) *Editor {
	e := &Editor{}
	for _, t := range initial {
		e.tags = Add(e.tags, t)
	}
	return e
}

func (e *Editor) SetInput(s string) { e.input = s }

func (e *Editor) Input() string { return e.input }

// Submit commits the pending input. The input is cleared only when a tag
// was actually added; the result reports whether that happened.
func (e *Editor) Submit() bool {
	next := Add(e.tags, e.input)
	if len(next) == len(e.tags) {
		return false
	}
	e.tags = next
	e.input = ""
	return true
}

func (e *Editor) Add(text string) { e.tags = Add(e.tags, text) }

func (e *Editor) Remove(text string) { e.tags = Remove(e.tags, text) }

// RemoveLast drops the most recently added tag, if any.
func (e *Editor) RemoveLast() {
	if len(e.tags) > 0 {
		e.tags = e.tags[:len(e.tags)-1]
	}
}

// Tags returns a copy of the current list. It is never nil.
func (e *Editor) Tags() []string {
	out := make([]string, len(e.tags))
	copy(out, e.tags)
	return out
}

// Reset empties both the list and the pending input.
func (e *Editor) Reset(initial ...string) {
	e.tags = nil
	e.input = ""
	for _, t := range initial {
		e.tags = Add(e.tags, t)
	}
}
