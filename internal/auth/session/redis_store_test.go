package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour)
}

func TestRedisStoreSetGetClear(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got != "" {
		t.Errorf("empty slot = %q, want \"\"", got)
	}

	if err := store.Set(ctx, "u1", "tok-a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err = store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-a" {
		t.Errorf("slot = %q, want tok-a", got)
	}

	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if got != "" {
		t.Errorf("slot after clear = %q, want \"\"", got)
	}

	// Clearing again stays a no-op.
	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestRedisStoreRotate(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	if err := store.Set(ctx, "u1", "tok-a"); err != nil {
		t.Fatalf("set: %v", err)
	}

	ok, err := store.Rotate(ctx, "u1", "tok-a", "tok-b")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if !ok {
		t.Fatal("rotation of the current token must succeed")
	}

	// The first rotation consumed tok-a; a replay must fail.
	ok, err = store.Rotate(ctx, "u1", "tok-a", "tok-c")
	if err != nil {
		t.Fatalf("rotate replay: %v", err)
	}
	if ok {
		t.Fatal("rotation of a stale token must fail")
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-b" {
		t.Errorf("slot = %q, want tok-b", got)
	}
}

func TestRedisStoreRotateEmptySlot(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	ok, err := store.Rotate(ctx, "u1", "tok-a", "tok-b")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if ok {
		t.Fatal("rotation against an empty slot must fail")
	}
}
