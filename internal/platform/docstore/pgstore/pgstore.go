// Package pgstore implements docstore.Store on a PostgreSQL jsonb table.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/docstore"
)

// Store keeps every collection in the documents table created by the
// postgres migrations.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *Store) Driver() string { return "postgres" }

func (s *Store) PoolStats() *db.PoolStats { return db.GetPoolStats(s.pool) }

// InTx runs fn in a transaction. Nested calls join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(db.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// queryable abstracts pgxpool.Pool and pgx.Tx.
type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (s *Store) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	where, args, err := docstore.CompileWhere(docstore.Postgres, filter, []any{c.name})
	if err != nil {
		return nil, err
	}

	rows, err := c.store.conn(ctx).Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 AND (`+where+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		doc, err := decode(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.name, err)
	}
	return docs, nil
}

func (c *collection) Get(ctx context.Context, id int64) (docstore.Document, error) {
	var data []byte
	err := c.store.conn(ctx).QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`, c.name, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", c.name, id, err)
	}
	return decode(id, data)
}

func (c *collection) Insert(ctx context.Context, doc docstore.Document) (int64, error) {
	data, err := encode(doc)
	if err != nil {
		return 0, err
	}

	var id int64
	err = c.store.InTx(ctx, func(ctx context.Context) error {
		q := c.store.conn(ctx)
		if err := q.QueryRow(ctx, `
			INSERT INTO document_counters (collection, seq) VALUES ($1, 1)
			ON CONFLICT (collection) DO UPDATE SET seq = document_counters.seq + 1
			RETURNING seq`, c.name).Scan(&id); err != nil {
			return fmt.Errorf("allocate %s id: %w", c.name, err)
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
			c.name, id, data); err != nil {
			return fmt.Errorf("insert %s: %w", c.name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (c *collection) Update(ctx context.Context, id int64, set docstore.Document) error {
	data, err := encode(set)
	if err != nil {
		return err
	}
	tag, err := c.store.conn(ctx).Exec(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2`, c.name, id, data)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", c.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id int64) error {
	tag, err := c.store.conn(ctx).Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, c.name, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// encode serializes doc without its id, which lives in its own column.
func encode(doc docstore.Document) ([]byte, error) {
	body := docstore.Clone(doc)
	delete(body, docstore.IDField)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func decode(id int64, data []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %d: %w", id, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	doc[docstore.IDField] = float64(id)
	return doc, nil
}
