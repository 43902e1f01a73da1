// Package docstore is the document storage abstraction shared by all
// services. Documents are JSON-shaped maps keyed by an auto-increment integer
// "_id"; filters use the MongoDB operator vocabulary so that the same filter
// runs unchanged against every driver.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// IDField is the key holding a document's identifier.
const IDField = "_id"

// ErrNotFound is returned when no document matches an id.
var ErrNotFound = errors.New("document not found")

// Document is a stored record.
type Document map[string]any

// Filter selects documents. Each key is a field; a value is either a scalar
// compared for equality or an operator map such as {"$gt": 80}.
// Supported operators: $eq $ne $gt $gte $lt $lte $in. Keys are ANDed.
type Filter map[string]any

// Collection is a named set of documents.
type Collection interface {
	// Find returns matching documents ordered by id. A nil filter matches all.
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// Get returns the document with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (Document, error)
	// Insert stores doc under a newly allocated id and returns it. Any "_id"
	// already in doc is ignored.
	Insert(ctx context.Context, doc Document) (int64, error)
	// Update sets the given fields on the document, leaving others untouched.
	Update(ctx context.Context, id int64, set Document) error
	// Delete removes the document with the given id.
	Delete(ctx context.Context, id int64) error
}

// Store opens collections on one backend.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	// Driver names the backend ("mongo", "postgres", "sqlite", "memory").
	Driver() string
}

// Transactor is implemented by stores that can run several operations
// atomically. fn must use the context it is given.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunInTx runs fn in a transaction when s supports it and directly otherwise.
func RunInTx(ctx context.Context, s Store, fn func(ctx context.Context) error) error {
	if t, ok := s.(Transactor); ok {
		return t.InTx(ctx, fn)
	}
	return fn(ctx)
}

// ID returns the document's identifier. Identifiers decoded from JSON arrive
// as float64 and are converted.
func ID(doc Document) (int64, bool) {
	return toInt64(doc[IDField])
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// Clone returns a shallow copy of doc.
func Clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// ValidateFilter rejects unknown operators and malformed operator values.
func ValidateFilter(f Filter) error {
	for field, cond := range f {
		if field == "" {
			return errors.New("filter: empty field name")
		}
		ops, ok := cond.(map[string]any)
		if !ok {
			continue
		}
		for op, v := range ops {
			switch op {
			case "$eq", "$ne", "$gt", "$gte", "$lt", "$lte":
			case "$in":
				if _, ok := v.([]any); !ok {
					return fmt.Errorf("filter: %s.$in needs a list, got %T", field, v)
				}
			default:
				return fmt.Errorf("filter: unsupported operator %q on %s", op, field)
			}
		}
	}
	return nil
}
