// Package pgkv is a PostgreSQL-backed kv.Backend, grounded in
// MrWong99-glyphoxa's pkg/memory/postgres package (connection-pool setup
// via pgxpool, migration-on-connect, pgx.Batch for multi-statement round
// trips). It exercises the "untrusted external KV backend" contract of
// spec.md §6 against a real driver rather than only an in-memory stub.
//
// The schema is a single table of opaque string keys to bytea values,
// namespaced the same way memkv is — namespacing itself is the KV
// Adapter's job (internal/store), not this package's.
package pgkv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xDarkicex/kvhnsw/internal/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kvhnsw_entries (
	key   TEXT PRIMARY KEY,
	value BYTEA NOT NULL
)`

// Store is a PostgreSQL-backed kv.Backend. All methods are safe for
// concurrent use; the underlying pool handles connection lifecycle.
type Store struct {
	pool *pgxpool.Pool

	// MaxBatch mirrors memkv.Store.MaxBatch: if set, GetMany/SetMany
	// reject batches larger than this with a SizeLimitExceeded
	// BackendError before issuing any query, simulating a backend-side
	// payload cap for tests that don't want to stand up a real limit.
	MaxBatch int
}

// Open connects to the database at dsn and ensures the backing table
// exists. Callers must call Close when done.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgkv: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgkv: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgkv: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases all connections held by the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Get(ctx context.Context, k string) ([]byte, error) {
	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kvhnsw_entries WHERE key = $1`, k).Scan(&v)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &kv.BackendError{Kind: kv.Transient, Op: "get", Err: err}
	}
	return v, nil
}

func (s *Store) GetMany(ctx context.Context, ks []string) ([][]byte, error) {
	if s.MaxBatch > 0 && len(ks) > s.MaxBatch {
		return nil, &kv.BackendError{Kind: kv.SizeLimitExceeded, Op: "get_many", N: len(ks)}
	}
	out := make([][]byte, len(ks))
	if len(ks) == 0 {
		return out, nil
	}

	index := make(map[string]int, len(ks))
	for i, k := range ks {
		index[k] = i
	}

	rows, err := s.pool.Query(ctx, `SELECT key, value FROM kvhnsw_entries WHERE key = ANY($1)`, ks)
	if err != nil {
		return nil, &kv.BackendError{Kind: kv.Transient, Op: "get_many", N: len(ks), Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, &kv.BackendError{Kind: kv.Transient, Op: "get_many", N: len(ks), Err: err}
		}
		if i, ok := index[k]; ok {
			out[i] = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &kv.BackendError{Kind: kv.Transient, Op: "get_many", N: len(ks), Err: err}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, k string, v []byte) error {
	const q = `
		INSERT INTO kvhnsw_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.pool.Exec(ctx, q, k, v); err != nil {
		return &kv.BackendError{Kind: kv.Transient, Op: "set", Err: err}
	}
	return nil
}

func (s *Store) SetMany(ctx context.Context, kvs []kv.KeyValue) error {
	if s.MaxBatch > 0 && len(kvs) > s.MaxBatch {
		return &kv.BackendError{Kind: kv.SizeLimitExceeded, Op: "set_many", N: len(kvs)}
	}
	if len(kvs) == 0 {
		return nil
	}

	const q = `
		INSERT INTO kvhnsw_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	batch := &pgx.Batch{}
	for _, p := range kvs {
		batch.Queue(q, p.Key, p.Value)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range kvs {
		if _, err := br.Exec(); err != nil {
			return &kv.BackendError{Kind: kv.Transient, Op: "set_many", N: len(kvs), Err: err}
		}
	}
	return nil
}
