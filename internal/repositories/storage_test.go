package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/reelx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Get Missing Key", func(t *testing.T) {
		s := NewSQLiteStorage(setupTestDB(t))

		_, err := s.Get(ctx, "auth")
		if !errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		s := NewSQLiteStorage(setupTestDB(t))

		if err := s.Set(ctx, "accessToken", "tok-1"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		got, err := s.Get(ctx, "accessToken")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != "tok-1" {
			t.Errorf("expected tok-1, got %q", got)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		s := NewSQLiteStorage(setupTestDB(t))

		if err := s.Set(ctx, "auth", `{"token":"a"}`); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := s.Set(ctx, "auth", `{"token":"b"}`); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, _ := s.Get(ctx, "auth")
		if got != `{"token":"b"}` {
			t.Errorf("expected overwritten value, got %q", got)
		}

		entries, err := s.Entries(ctx)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected 1 entry after overwrite, got %d", len(entries))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := NewSQLiteStorage(setupTestDB(t))

		for _, k := range []string{"auth", "accessToken", "theme"} {
			if err := s.Set(ctx, k, "v"); err != nil {
				t.Fatalf("failed to set %s: %v", k, err)
			}
		}

		if err := s.Delete(ctx, "auth", "accessToken", "never-set"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		entries, err := s.Entries(ctx)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(entries) != 1 || entries[0].Key != "theme" {
			t.Errorf("expected only theme to remain, got %+v", entries)
		}

		if err := s.Delete(ctx); err != nil {
			t.Errorf("deleting nothing should succeed, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		s := NewSQLiteStorage(db)
		db.Close()

		if err := s.Set(ctx, "auth", "v"); err == nil {
			t.Error("expected error writing to closed database")
		}
		if _, err := s.Get(ctx, "auth"); err == nil || errors.Is(err, shared.ErrKeyNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
		if _, err := s.Entries(ctx); err == nil {
			t.Error("expected error listing closed database")
		}
		if err := s.Delete(ctx, "auth"); err == nil {
			t.Error("expected error deleting from closed database")
		}
	})
}

func TestRedisStorage(t *testing.T) {
	t.Run("Default Prefix", func(t *testing.T) {
		s := NewRedisStorage(nil, "")
		if got := s.key("auth"); got != "reelx:auth" {
			t.Errorf("expected reelx:auth, got %s", got)
		}

		s = NewRedisStorage(nil, "team:")
		if got := s.key("auth"); got != "team:auth" {
			t.Errorf("expected team:auth, got %s", got)
		}
	})

	t.Run("Unreachable Server", func(t *testing.T) {
		_, err := NewRedisClient(context.Background(), shared.StorageConfig{RedisAddr: "127.0.0.1:1"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
