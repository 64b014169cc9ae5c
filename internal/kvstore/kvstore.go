// Package kvstore is the durable string key/value storage backing client-side
// state such as the selected city list.
package kvstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"
)

//go:embed sql/get.sql
var getSQL string

//go:embed sql/put.sql
var putSQL string

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db: db, now: time.Now}
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, getSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	ts := s.now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, putSQL, key, value, ts); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}
