package pgstore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/auth"
	"hireflow/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("HIREFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HIREFLOW_TEST_DATABASE_URL not set")
	}
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			db, err := database.NewPostgres(ctx, database.PostgresConfig{Driver: driver, DSN: dsn, MaxOpenConns: 2, ReadyTimeout: 2 * time.Second}, slog.Default())
			if err != nil {
				t.Skipf("postgres not reachable: %v", err)
			}
			defer db.Close()

			store := New(db, "hireflow-test-"+driver)
			if err := store.EnsureSchema(ctx); err != nil {
				t.Fatalf("schema: %v", err)
			}
			t.Cleanup(func() { _ = store.Clear(context.Background()) })

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if _, err := store.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			user := &auth.User{ID: "4", Email: "lee@example.com", Role: auth.RoleRecruiter}
			if err := store.Save(ctx, storage.Credentials{Token: "tok-a", User: user}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, storage.Credentials{Token: "tok-b"}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			creds, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if creds.Token != "tok-b" || creds.User != nil {
				t.Fatalf("unexpected credentials %+v", creds)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("second clear: %v", err)
			}
		})
	}
}
