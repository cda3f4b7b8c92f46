// Package docstore is the hosted document database behind the remote catalog
// and order stores: JSON documents grouped in named collections, kept in a
// single PostgreSQL table.
package docstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 1 * time.Second
	queryTimeout   = 3 * time.Second
)

var ErrNoDocument = errors.New("document not found")

type Document struct {
	ID        string
	Body      json.RawMessage
	CreatedAt time.Time
}

// Decode unmarshals the stored body into v. Identity is not part of the body;
// callers merge ID themselves.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Body, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is an equality match on the text value found at Path inside the
// body, e.g. {"buyer", "userId"}.
type Filter struct {
	Path     []string
	Value    string
	FoldCase bool
}

type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.pool.Ping(ctx)
	})
}

// Insert stores body under a fresh id. created_at is taken from the database
// clock, never from the caller.
func (s *Store) Insert(ctx context.Context, collection string, body any) (Document, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}
	return s.insert(ctx, collection, uuid.NewString(), raw)
}

// insert is idempotent per id: a retry after a commit whose reply was lost
// finds the row already there and returns it instead of failing.
func (s *Store) insert(ctx context.Context, collection, id string, raw json.RawMessage) (Document, error) {
	d := Document{ID: id, Body: raw}

	err := withRetry(ctx, func() error {
		return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
			err := s.pool.QueryRow(ctx, `
				INSERT INTO documents (collection, id, body)
				VALUES ($1, $2, $3)
				ON CONFLICT (collection, id) DO NOTHING
				RETURNING created_at
			`, collection, id, raw).Scan(&d.CreatedAt)
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			return s.pool.QueryRow(ctx, `
				SELECT body, created_at
				FROM documents
				WHERE collection = $1 AND id = $2
			`, collection, id).Scan(&d.Body, &d.CreatedAt)
		})
	})
	if err != nil {
		return Document{}, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return d, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	d := Document{ID: id}

	err := withRetry(ctx, func() error {
		return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
			return s.pool.QueryRow(ctx, `
				SELECT body, created_at
				FROM documents
				WHERE collection = $1 AND id = $2
			`, collection, id).Scan(&d.Body, &d.CreatedAt)
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNoDocument
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return d, nil
}

func (s *Store) List(ctx context.Context, collection string, order Order) ([]Document, error) {
	q := `
		SELECT id, body, created_at
		FROM documents
		WHERE collection = $1
	` + orderClause(order)

	return s.query(ctx, q, collection)
}

func (s *Store) Find(ctx context.Context, collection string, f Filter, order Order) ([]Document, error) {
	cond := `body #>> $2 = $3`
	if f.FoldCase {
		cond = `lower(body #>> $2) = lower($3)`
	}

	q := `
		SELECT id, body, created_at
		FROM documents
		WHERE collection = $1 AND ` + cond + orderClause(order)

	return s.query(ctx, q, collection, f.Path, f.Value)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Document, error) {
	var out []Document

	err := withRetry(ctx, func() error {
		return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
			rows, err := s.pool.Query(ctx, q, args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			out = make([]Document, 0, 16)
			for rows.Next() {
				var d Document
				if err := rows.Scan(&d.ID, &d.Body, &d.CreatedAt); err != nil {
					return err
				}
				out = append(out, d)
			}
			return rows.Err()
		})
	})
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return out, nil
}

func orderClause(o Order) string {
	if o == NewestFirst {
		return ` ORDER BY created_at DESC, id DESC`
	}
	return ` ORDER BY created_at ASC, id ASC`
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
