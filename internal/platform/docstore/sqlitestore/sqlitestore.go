// Package sqlitestore implements docstore.Store on an embedded SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/docstore"
)

// Store keeps every collection in one documents table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path (":memory:" works for tests)
// and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if err := applyPragmas(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	s := &Store{db: sqlDB}
	if _, err := s.Migrator().Up(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func applyPragmas(ctx context.Context, sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Migrator returns a migrator over the embedded sqlite migrations.
func (s *Store) Migrator() *db.Migrator {
	files, err := db.Migrations("sqlite")
	if err != nil {
		panic(err)
	}
	return db.NewMigrator(db.SQLTarget{DB: s.db}, files)
}

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

func (s *Store) Driver() string { return "sqlite" }

func (s *Store) PoolStats() *db.PoolStats { return db.GetSQLStats(s.db) }

type txKey struct{}

// InTx runs fn in a transaction. Nested calls join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// queryable abstracts *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn(ctx context.Context) queryable {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Find(ctx context.Context, filter docstore.Filter) ([]docstore.Document, error) {
	where, args, err := docstore.CompileWhere(docstore.SQLite, filter, []any{c.name})
	if err != nil {
		return nil, err
	}

	rows, err := c.store.conn(ctx).QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? AND (`+where+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id   int64
			data string
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
	var data string
	err := c.store.conn(ctx).QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", c.name, id, err)
	}
	return decode(id, data)
}

func (c *collection) Insert(ctx context.Context, doc docstore.Document) (int64, error) {
	body, err := encode(doc)
	if err != nil {
		return 0, err
	}

	var id int64
	err = c.store.InTx(ctx, func(ctx context.Context) error {
		q := c.store.conn(ctx)
		if err := q.QueryRowContext(ctx, `
			INSERT INTO document_counters (collection, seq) VALUES (?, 1)
			ON CONFLICT (collection) DO UPDATE SET seq = seq + 1
			RETURNING seq`, c.name).Scan(&id); err != nil {
			return fmt.Errorf("allocate %s id: %w", c.name, err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
			c.name, id, body); err != nil {
			return fmt.Errorf("insert %s: %w", c.name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update merges set into the stored document. json_patch is not used
// because a merge patch deletes keys set to null.
func (c *collection) Update(ctx context.Context, id int64, set docstore.Document) error {
	fields, err := docstore.Encode(set)
	if err != nil {
		return err
	}
	delete(fields, docstore.IDField)

	return c.store.InTx(ctx, func(ctx context.Context) error {
		doc, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		for k, v := range fields {
			doc[k] = v
		}
		body, err := encode(doc)
		if err != nil {
			return err
		}
		_, err = c.store.conn(ctx).ExecContext(ctx, `
			UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP
			WHERE collection = ? AND id = ?`, body, c.name, id)
		if err != nil {
			return fmt.Errorf("update %s %d: %w", c.name, id, err)
		}
		return nil
	})
}

func (c *collection) Delete(ctx context.Context, id int64) error {
	res, err := c.store.conn(ctx).ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, c.name, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.name, id, err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func encode(doc docstore.Document) (string, error) {
	body := docstore.Clone(doc)
	delete(body, docstore.IDField)
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

func decode(id int64, data string) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode document %d: %w", id, err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	doc[docstore.IDField] = float64(id)
	return doc, nil
}
