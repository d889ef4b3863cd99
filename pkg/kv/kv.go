// Package kv defines the key-value surface that stands in for browser local
// storage. Values are opaque serialized strings; callers own the encoding.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the backing store cannot be reached.
var ErrUnavailable = errors.New("kv store unavailable")

// Store is the persistence surface shared by every backend.
type Store interface {
	// Get returns the raw value for key and whether it existed.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ExpiringStore adds per-key expiry. Expired keys read as absent.
type ExpiringStore interface {
	Store
	// SetWithTTL writes value under key until ttl elapses.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// SetIfAbsent writes value only when key is missing or expired and
	// reports whether this call claimed the key.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// Sweeper is implemented by backends without native expiry.
type Sweeper interface {
	// DeleteExpired removes every expired key and returns how many were dropped.
	DeleteExpired(ctx context.Context) (int64, error)
}
