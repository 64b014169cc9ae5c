// Package respcache stores successful HTTP responses keyed by their exact
// request URL. Transport fills it; readers only call Match.
package respcache

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

//go:embed sql/match.sql
var matchSQL string

//go:embed sql/put.sql
var putSQL string

type Entry struct {
	URL      string
	Status   int
	Body     []byte
	StoredAt time.Time
}

type Cache interface {
	Match(ctx context.Context, url string) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
}

type sqliteCache struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) Cache {
	return &sqliteCache{db: db}
}

func (c *sqliteCache) Match(ctx context.Context, url string) (Entry, bool, error) {
	var e Entry
	var ts string
	err := c.db.QueryRowContext(ctx, matchSQL, url).Scan(&e.URL, &e.Status, &e.Body, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("match %q: %w", url, err)
	}
	e.StoredAt, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse stored_at %q: %w", ts, err)
	}
	return e, true, nil
}

func (c *sqliteCache) Put(ctx context.Context, e Entry) error {
	ts := e.StoredAt.UTC().Format(time.RFC3339Nano)
	if _, err := c.db.ExecContext(ctx, putSQL, e.URL, e.Status, e.Body, ts); err != nil {
		return fmt.Errorf("put %q: %w", e.URL, err)
	}
	return nil
}

// Transport is an http.RoundTripper that records every 200 response to a GET
// request in the cache before handing it back to the caller.
type Transport struct {
	Base   http.RoundTripper
	Cache  Cache
	Now    func() time.Time
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || req.Method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if closeErr != nil {
		t.logger().Warn("response cache: close body", "error", closeErr)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	entry := Entry{URL: req.URL.String(), Status: resp.StatusCode, Body: body, StoredAt: now()}
	if err := t.Cache.Put(req.Context(), entry); err != nil {
		t.logger().Warn("response cache: store failed", "url", entry.URL, "error", err)
	}
	return resp, nil
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
