// Package cities keeps the ordered list of tracked cities and persists it as a
// JSON array under a single storage key.
package cities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pwa-weather/internal/kvstore"
	"pwa-weather/internal/modules/forecast/types"
)

// StorageKey is the key the list is stored under.
const StorageKey = "selectedCities"

type List struct {
	store  kvstore.Store
	logger *slog.Logger

	mu      sync.RWMutex
	entries []types.CityEntry
}

func New(store kvstore.Store, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{store: store, logger: logger}
}

// Load reads the persisted list and makes it the in-memory list. A missing
// key, a read failure or unparsable JSON all yield an empty list.
func (l *List) Load(ctx context.Context) []types.CityEntry {
	entries := l.read(ctx)

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()

	return clone(entries)
}

func (l *List) read(ctx context.Context) []types.CityEntry {
	raw, err := l.store.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		l.logger.Warn("city list: read failed, starting empty", "error", err)
		return nil
	}
	var entries []types.CityEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.logger.Warn("city list: stored value is not a city array, starting empty", "error", err)
		return nil
	}
	return entries
}

// Append adds an entry at the end of the in-memory list. Nothing is
// deduplicated or validated.
func (l *List) Append(entry types.CityEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of the in-memory list in insertion order.
func (l *List) Entries() []types.CityEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clone(l.entries)
}

// SaveAll replaces both the in-memory and the persisted list with entries.
func (l *List) SaveAll(ctx context.Context, entries []types.CityEntry) error {
	if entries == nil {
		entries = []types.CityEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode city list: %w", err)
	}

	l.mu.Lock()
	l.entries = clone(entries)
	l.mu.Unlock()

	if err := l.store.Set(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("save city list: %w", err)
	}
	return nil
}

// Save persists the current in-memory list.
func (l *List) Save(ctx context.Context) error {
	return l.SaveAll(ctx, l.Entries())
}

func clone(entries []types.CityEntry) []types.CityEntry {
	if entries == nil {
		return nil
	}
	out := make([]types.CityEntry, len(entries))
	copy(out, entries)
	return out
}
