package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, ok, err := store.Get(ctx, "cart"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "cart", "[]"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "wishlist", `["Rose Perfume"]`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "cart")
	if err != nil || !ok || val != "[]" {
		t.Fatalf("unexpected get result %q ok=%v err=%v", val, ok, err)
	}
	if got := store.Keys(); len(got) != 2 || got[0] != "cart" || got[1] != "wishlist" {
		t.Fatalf("unexpected keys %v", got)
	}

	if err := store.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cart"); ok {
		t.Fatalf("expected cart to be gone")
	}
}

func TestMemoryClosedIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := store.Set(ctx, "cart", "[]"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on set, got %v", err)
	}
	if _, _, err := store.Get(ctx, "cart"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on get, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on ping, got %v", err)
	}
}

func TestMemoryExpiryAndClaim(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	claimed, err := store.SetIfAbsent(ctx, "idempotency:a", "pending", time.Minute)
	if err != nil || !claimed {
		t.Fatalf("expected first claim to win, claimed=%v err=%v", claimed, err)
	}
	claimed, err = store.SetIfAbsent(ctx, "idempotency:a", "pending", time.Minute)
	if err != nil || claimed {
		t.Fatalf("expected second claim to lose, claimed=%v err=%v", claimed, err)
	}
	if err := store.SetWithTTL(ctx, "idempotency:b", "done", time.Second); err != nil {
		t.Fatalf("set with ttl: %v", err)
	}
	if err := store.Set(ctx, "cart", "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "idempotency:a"); ok {
		t.Fatalf("expired key should read as absent")
	}
	if store.Len() != 2 {
		t.Fatalf("expected expired key to be dropped on read, have %d keys", store.Len())
	}
	dropped, err := store.DeleteExpired(ctx)
	if err != nil || dropped != 1 {
		t.Fatalf("expected one swept key, got %d err=%v", dropped, err)
	}
	if got := store.Keys(); len(got) != 1 || got[0] != "cart" {
		t.Fatalf("expected only the cart to survive, got %v", got)
	}
	claimed, err = store.SetIfAbsent(ctx, "idempotency:a", "again", time.Minute)
	if err != nil || !claimed {
		t.Fatalf("expired key should be claimable, claimed=%v err=%v", claimed, err)
	}
}
