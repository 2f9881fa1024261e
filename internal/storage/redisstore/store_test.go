package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"hireflow/internal/domain/auth"
	"hireflow/internal/storage"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("HIREFLOW_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HIREFLOW_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStoreRoundTrip(t *testing.T) {
	client := newTestClient(t)
	prefix := "hireflow-test:" + time.Now().Format("150405.000000")
	store := New(client, prefix)
	ctx := context.Background()
	t.Cleanup(func() { _ = store.Clear(ctx) })

	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	user := &auth.User{ID: "9", Email: "sam@example.com", Role: auth.RoleStudent}
	if err := store.Save(ctx, storage.Credentials{Token: "tok", User: user}); err != nil {
		t.Fatalf("save: %v", err)
	}
	creds, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if creds.Token != "tok" || creds.User == nil || creds.User.Email != "sam@example.com" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	exists, err := client.Exists(ctx, prefix+":token", prefix+":user").Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists != 0 {
		t.Fatalf("expected both keys removed, %d remain", exists)
	}
}
