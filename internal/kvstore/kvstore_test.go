package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"pwa-weather/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate.Run(context.Background(), db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func testStores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": NewSQLite(setupTestDB(t)),
		"memory": NewMemory(),
	}
}

func TestGet_Missing(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "selectedCities")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) err = %v; want ErrNotFound", err)
			}
		})
	}
}

func TestSet_Overwrites(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, "k", "one"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "k", "two"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != "two" {
				t.Errorf("Get = %q; want two", got)
			}
		})
	}
}

func TestSQLite_EmptyValueIsStored(t *testing.T) {
	s := NewSQLite(setupTestDB(t))
	ctx := context.Background()
	if err := s.Set(ctx, "k", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "" {
		t.Errorf("Get = %q; want empty", got)
	}
}
