// Package app holds the UI-independent state of zenmap: the active view,
// the snippet being edited, the search term, the selected tree node and
// the generating flag. Front ends (the TUI and the CLI) drive it and
// render from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/zenmap/internal/mindmap"
	"github.com/jeanpaul/zenmap/internal/note"
	"github.com/jeanpaul/zenmap/internal/tags"
)

type View int

const (
	ViewCapture View = iota
	ViewLibrary
	ViewMindMap
)

func (v View) String() string {
	switch v {
	case ViewCapture:
		return "capture"
	case ViewLibrary:
		return "library"
	case ViewMindMap:
		return "mind map"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyContent = errors.New("cannot save an empty note")
	ErrBusy         = errors.New("a mind map is already being generated")
	ErrNotFound     = errors.New("note not found")
)

// SnippetStore is the persistence the controller needs. *store.Store
// satisfies it.
type SnippetStore interface {
	ListSnippets() []note.Snippet
	PutSnippet(note.Snippet) error
	DeleteSnippet(id string) error
	PutMindMap(note.MindMapData) error
	GetMindMap() (note.MindMapData, bool)
	ClearAll() error
}

// MapGenerator builds a tree over snippets. *mindmap.Generator satisfies it.
type MapGenerator interface {
	Generate(ctx context.Context, snippets []note.Snippet) (*note.MindMapNode, error)
}

type Option func(*Controller)

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = log }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDSource replaces the uuid generator for new snippets and map runs.
func WithIDSource(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// Controller is not safe for concurrent use. The TUI calls it only from
// its update loop; the one long-running call, Generate, happens between
// BeginGeneration and CompleteGeneration without touching the controller.
type Controller struct {
	store SnippetStore
	gen   MapGenerator
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string

	View       View
	Snippets   []note.Snippet
	MindMap    *note.MindMapData
	Content    string
	Tags       *tags.Editor
	EditingID  string
	Selected   string
	SearchTerm string

	generating bool
}

func New(st SnippetStore, gen MapGenerator, opts ...Option) *Controller {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	c := &Controller{
		store: st,
		gen:   gen,
		log:   l,
		now:   time.Now,
		newID: uuid.NewString,
		Tags:  tags.NewEditor(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "app")
	c.Refresh()
	return c
}

// Refresh re-reads both records from the store.
func (c *Controller) Refresh() {
	c.Snippets = c.store.ListSnippets()
	if m, ok := c.store.GetMindMap(); ok {
		c.MindMap = &m
	} else {
		c.MindMap = nil
	}
}

// Snippet returns the cached snippet with id.
func (c *Controller) Snippet(id string) (note.Snippet, bool) {
	for _, s := range c.Snippets {
		if s.ID == id {
			return s, true
		}
	}
	return note.Snippet{}, false
}

// SaveSnippet persists the editor contents, as a new snippet or as an
// update of EditingID, then resets the editor. Updating keeps CreatedAt.
func (c *Controller) SaveSnippet() (note.Snippet, error) {
	now := note.Millis(c.now())
	sn := note.Snippet{
		ID:        c.EditingID,
		Content:   c.Content,
		Tags:      c.Tags.Tags(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	editing := c.EditingID != ""
	if editing {
		if prev, ok := c.Snippet(c.EditingID); ok {
			sn.CreatedAt = prev.CreatedAt
		}
	} else {
		sn.ID = c.newID()
	}

	if err := note.Validate(sn); err != nil {
		var ve note.ValidationError
		if errors.As(err, &ve) && ve.Has("content") {
			return note.Snippet{}, ErrEmptyContent
		}
		return note.Snippet{}, fmt.Errorf("invalid note: %w", err)
	}
	if err := c.store.PutSnippet(sn); err != nil {
		return note.Snippet{}, fmt.Errorf("save note: %w", err)
	}

	c.log.WithFields(logrus.Fields{"id": sn.ID, "edit": editing, "tags": len(sn.Tags)}).Info("note saved")
	c.Refresh()
	c.ResetEditor()
	if editing {
		c.View = ViewLibrary
	}
	return sn, nil
}

// StartEdit loads snippet id into the editor and switches to the capture
// view.
func (c *Controller) StartEdit(id string) error {
	sn, ok := c.Snippet(id)
	if !ok {
		return ErrNotFound
	}
	c.EditingID = sn.ID
	c.Content = sn.Content
	c.Tags.Reset(sn.Tags...)
	c.View = ViewCapture
	return nil
}

func (c *Controller) ResetEditor() {
	c.EditingID = ""
	c.Content = ""
	c.Tags.Reset()
}

func (c *Controller) DeleteSnippet(id string) error {
	if err := c.store.DeleteSnippet(id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	c.log.WithField("id", id).Info("note deleted")
	if c.EditingID == id {
		c.ResetEditor()
	}
	c.Refresh()
	return nil
}

// ClearAll erases every snippet and the mind map.
func (c *Controller) ClearAll() error {
	if err := c.store.ClearAll(); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	c.log.Warn("all data cleared")
	c.ResetEditor()
	c.Selected = ""
	c.Refresh()
	return nil
}

// Filtered returns the cached snippets matching SearchTerm.
func (c *Controller) Filtered() []note.Snippet {
	return FilterSnippets(c.Snippets, c.SearchTerm)
}

// FilterSnippets keeps the snippets whose content or any tag contains
// term, ignoring case. Whitespace in term is significant. An empty term
// keeps everything.
func FilterSnippets(list []note.Snippet, term string) []note.Snippet {
	term = strings.ToLower(term)
	if term == "" {
		return list
	}
	out := make([]note.Snippet, 0, len(list))
	for _, s := range list {
		if matches(s, term) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s note.Snippet, term string) bool {
	if strings.Contains(strings.ToLower(s.Content), term) {
		return true
	}
	for _, t := range s.Tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

func (c *Controller) Generating() bool { return c.generating }

// BeginGeneration marks a generation as in flight and returns the snippets
// it should run over. Every successful call must be paired with
// CompleteGeneration.
func (c *Controller) BeginGeneration() ([]note.Snippet, error) {
	if c.generating {
		return nil, ErrBusy
	}
	if len(c.Snippets) == 0 {
		return nil, &mindmap.Error{Kind: mindmap.ErrEmptyInput}
	}
	c.generating = true
	snapshot := make([]note.Snippet, len(c.Snippets))
	copy(snapshot, c.Snippets)
	return snapshot, nil
}

// CompleteGeneration clears the generating flag and, when err is nil,
// stores root as the new snapshot over count snippets.
func (c *Controller) CompleteGeneration(root *note.MindMapNode, count int, err error) error {
	c.generating = false
	if err != nil {
		c.log.WithError(err).Warn("mind map generation failed")
		return err
	}
	if root == nil {
		return &mindmap.Error{Kind: mindmap.ErrEmptyResponse}
	}

	data := note.MindMapData{
		ID:           c.newID(),
		Root:         *root,
		CreatedAt:    note.Millis(c.now()),
		SnippetCount: count,
	}
	if err := c.store.PutMindMap(data); err != nil {
		return fmt.Errorf("save mind map: %w", err)
	}
	c.MindMap = &data
	c.Selected = data.Root.ID
	c.log.WithFields(logrus.Fields{"id": data.ID, "nodes": root.Count()}).Info("mind map stored")
	return nil
}

// GenerateMindMap runs a whole generation synchronously.
func (c *Controller) GenerateMindMap(ctx context.Context) error {
	snippets, err := c.BeginGeneration()
	if err != nil {
		return err
	}
	var root *note.MindMapNode
	if c.gen == nil {
		err = &mindmap.Error{Kind: mindmap.ErrConfiguration}
	} else {
		root, err = c.gen.Generate(ctx, snippets)
	}
	return c.CompleteGeneration(root, len(snippets), err)
}

// Generator exposes the injected generator for front ends that run it
// off the update loop.
func (c *Controller) Generator() MapGenerator { return c.gen }

// SelectNode selects the node with id in the current map.
func (c *Controller) SelectNode(id string) bool {
	if c.MindMap == nil || c.MindMap.Root.Find(id) == nil {
		return false
	}
	c.Selected = id
	return true
}

// SelectedNode returns the selected node, or nil.
func (c *Controller) SelectedNode() *note.MindMapNode {
	if c.MindMap == nil || c.Selected == "" {
		return nil
	}
	return c.MindMap.Root.Find(c.Selected)
}
