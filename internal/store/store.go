// Package store persists the snippet collection and the single mind-map
// snapshot on top of a kv.Substrate.
//
// Reads never fail: a missing or unreadable record reads as empty/absent
// and the decode problem is logged. Writes return their error to the
// caller. The read-modify-write in PutSnippet and DeleteSnippet is not
// locked; one writer at a time is assumed.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/zenmap/internal/kv"
	"github.com/jeanpaul/zenmap/internal/note"
)

const (
	SnippetsKey = "zen_knowledge_snippets"
	MindMapKey  = "zen_knowledge_mindmap"
)

type Store struct {
	kv  kv.Substrate
	log logrus.FieldLogger
}

func New(sub kv.Substrate, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Store{kv: sub, log: log.WithField("component", "store")}
}

// ListSnippets returns every snippet, most recently updated first.
func (s *Store) ListSnippets() []note.Snippet {
	data, err := s.kv.Get(SnippetsKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.WithError(err).Warn("read snippets")
		}
		return []note.Snippet{}
	}

	var snippets []note.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		s.log.WithError(err).Warn("snippet collection unreadable, treating as empty")
		return []note.Snippet{}
	}
	if snippets == nil {
		snippets = []note.Snippet{}
	}
	sortByUpdated(snippets)
	return snippets
}

// PutSnippet inserts sn or replaces the stored snippet with the same id,
// then rewrites the whole collection. Callers updating a snippet must carry
// its original CreatedAt.
func (s *Store) PutSnippet(sn note.Snippet) error {
	snippets := s.ListSnippets()

	replaced := false
	for i := range snippets {
		if snippets[i].ID == sn.ID {
			snippets[i] = sn
			replaced = true
			break
		}
	}
	if !replaced {
		snippets = append(snippets, sn)
	}
	sortByUpdated(snippets)

	if err := s.writeSnippets(snippets); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": sn.ID, "replaced": replaced, "total": len(snippets)}).Debug("snippet saved")
	return nil
}

// DeleteSnippet removes the snippet with id. An unknown id is a no-op.
func (s *Store) DeleteSnippet(id string) error {
	snippets := s.ListSnippets()
	kept := snippets[:0]
	for _, sn := range snippets {
		if sn.ID != id {
			kept = append(kept, sn)
		}
	}
	if err := s.writeSnippets(kept); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": id, "removed": len(snippets) - len(kept)}).Debug("snippet deleted")
	return nil
}

// PutMindMap replaces the stored snapshot.
func (s *Store) PutMindMap(m note.MindMapData) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mind map: %w", err)
	}
	if err := s.kv.Set(MindMapKey, data); err != nil {
		return fmt.Errorf("write mind map: %w", err)
	}
	return nil
}

// GetMindMap returns the stored snapshot. ok is false when none was ever
// generated or the stored bytes have an incompatible shape.
func (s *Store) GetMindMap() (m note.MindMapData, ok bool) {
	data, err := s.kv.Get(MindMapKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.WithError(err).Warn("read mind map")
		}
		return note.MindMapData{}, false
	}

	var raw struct {
		note.MindMapData
		Root *note.MindMapNode `json:"root"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw.Root == nil {
		s.log.WithError(err).Warn("mind map snapshot unreadable, treating as absent")
		return note.MindMapData{}, false
	}
	m = raw.MindMapData
	m.Root = *raw.Root
	return m, true
}

// ClearAll erases both records.
func (s *Store) ClearAll() error {
	if err := s.kv.Delete(SnippetsKey); err != nil {
		return fmt.Errorf("clear snippets: %w", err)
	}
	if err := s.kv.Delete(MindMapKey); err != nil {
		return fmt.Errorf("clear mind map: %w", err)
	}
	s.log.Info("store cleared")
	return nil
}

func (s *Store) writeSnippets(snippets []note.Snippet) error {
	if snippets == nil {
		snippets = []note.Snippet{}
	}
	data, err := json.Marshal(snippets)
	if err != nil {
		return fmt.Errorf("encode snippets: %w", err)
	}
	if err := s.kv.Set(SnippetsKey, data); err != nil {
		return fmt.Errorf("write snippets: %w", err)
	}
	return nil
}

func sortByUpdated(snippets []note.Snippet) {
	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].UpdatedAt > snippets[j].UpdatedAt
	})
}
