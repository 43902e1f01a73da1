// Package memstore is an in-process docstore.Store for development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/clinic/clinic/internal/platform/docstore"
)

// Store keeps every collection in memory. Documents are normalized through
// the same JSON encoding the other drivers use, so numbers read back as
// float64.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Collection(name string) docstore.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[int64]docstore.Document)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }
func (s *Store) Driver() string              { return "memory" }

type collection struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]docstore.Document
}

func (c *collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	if err := docstore.ValidateFilter(filter); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int64, 0, len(c.docs))
	for id, doc := range c.docs {
		if docstore.Match(doc, filter) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]docstore.Document, len(ids))
	for i, id := range ids {
		out[i] = docstore.Clone(c.docs[id])
	}
	return out, nil
}

func (c *collection) Get(ctx context.Context, id int64) (docstore.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return docstore.Clone(doc), nil
}

func (c *collection) Insert(ctx context.Context, doc docstore.Document) (int64, error) {
	stored, err := normalize(doc)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	stored[docstore.IDField] = float64(id)
	c.docs[id] = stored
	return id, nil
}

func (c *collection) Update(ctx context.Context, id int64, set docstore.Document) error {
	fields, err := normalize(set)
	if err != nil {
		return err
	}
	delete(fields, docstore.IDField)

	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func normalize(doc docstore.Document) (docstore.Document, error) {
	out, err := docstore.Encode(doc)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = docstore.Document{}
	}
	return out, nil
}
