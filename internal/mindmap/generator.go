// Package mindmap turns the snippet library into a topic tree by asking a
// generative-AI provider for it. It owns tree creation only; persisting the
// result is the caller's job.
package mindmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/zenmap/internal/note"
	"github.com/jeanpaul/zenmap/internal/provider"
	"github.com/jeanpaul/zenmap/internal/schema"
)

type Generator struct {
	prov      provider.Provider
	validator *schema.Validator
	log       logrus.FieldLogger
	depth     int
}

type Option func(*Generator)

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = log }
}

// WithShapeDepth changes how many levels the requested shape spells out.
func WithShapeDepth(depth int) Option {
	return func(g *Generator) {
		if depth > 0 {
			g.depth = depth
		}
	}
}

// New returns a generator backed by prov. A nil prov is allowed; Generate
// then fails with ErrConfiguration.
func New(prov provider.Provider, opts ...Option) *Generator {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	g := &Generator{
		prov:      prov,
		validator: schema.NewValidator(),
		log:       l,
		depth:     ShapeDepth,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.WithField("component", "mindmap")
	return g
}

// Generate issues exactly one request for a tree over snippets. It never
// retries; the caller re-invokes on user request.
func (g *Generator) Generate(ctx context.Context, snippets []note.Snippet) (*note.MindMapNode, error) {
	if len(snippets) == 0 {
		return nil, fail(ErrEmptyInput, nil)
	}
	if g.prov == nil {
		return nil, fail(ErrConfiguration, nil)
	}

	log := g.log.WithFields(logrus.Fields{
		"provider": g.prov.Name(),
		"model":    g.prov.ModelName(),
		"snippets": len(snippets),
	})
	log.Info("generating mind map")
	start := time.Now()

	text, err := g.prov.Generate(ctx, provider.Request{
		System:   Instructions(),
		Prompt:   BuildPrompt(snippets),
		Schema:   ResponseShape(g.depth),
		MIMEType: "application/json",
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotConfigured) {
			log.WithError(err).Warn("provider not configured")
			return nil, fail(ErrConfiguration, err)
		}
		log.WithError(err).Error("mind map request failed")
		return nil, fail(ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("empty answer")
		return nil, fail(ErrEmptyResponse, nil)
	}

	root, err := g.decode(text)
	if err != nil {
		log.WithError(err).Warn("malformed answer")
		return nil, fail(ErrMalformedResponse, err)
	}

	log.WithFields(logrus.Fields{
		"nodes":    root.Count(),
		"depth":    root.Depth(),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("mind map generated")
	return root, nil
}

func (g *Generator) decode(text string) (*note.MindMapNode, error) {
	raw := []byte(cleanJSONOutput(text))
	if err := g.validator.Validate(NodeSchema, raw); err != nil {
		return nil, err
	}
	var root note.MindMapNode
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	AssignIDs(&root)
	return &root, nil
}

// AssignIDs gives the root note.RootID when it has no id, and gives every
// other node without an id, or with an id already used elsewhere in the
// tree, a path id derived from its parent. Nil child lists become empty.
func AssignIDs(root *note.MindMapNode) {
	if root.ID == "" {
		root.ID = note.RootID
	}
	seen := map[string]bool{root.ID: true}
	assignChildIDs(root, seen)
}

func assignChildIDs(n *note.MindMapNode, seen map[string]bool) {
	if n.Children == nil {
		n.Children = []note.MindMapNode{}
	}
	for i := range n.Children {
		c := &n.Children[i]
		if c.ID == "" || seen[c.ID] {
			c.ID = unusedID(note.ChildID(n.ID, i), seen)
		}
		seen[c.ID] = true
		assignChildIDs(c, seen)
	}
}

func unusedID(base string, seen map[string]bool) string {
	id := base
	for k := 2; seen[id]; k++ {
		id = fmt.Sprintf("%s~%d", base, k)
	}
	return id
}

// cleanJSONOutput strips markdown fences and any chatter around the JSON
// object some models add despite being asked not to. A body that opens
// with an array is returned as is, so validation rejects it.
func cleanJSONOutput(output string) string {
	output = strings.TrimSpace(output)
	output = strings.TrimPrefix(output, "```json")
	output = strings.TrimPrefix(output, "```")
	output = strings.TrimSuffix(output, "```")
	output = strings.TrimSpace(output)
	if strings.HasPrefix(output, "[") {
		return output
	}

	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start != -1 && end > start {
		output = output[start : end+1]
	}
	return output
}
