// Package cache holds the content-addressed result cache, the request status
// store, and the service counters, all behind a small key-value contract.
package cache

import (
	"context"
	"time"
)

// KV is the minimal key-value surface the stores need. Redis provides it in
// production; a process-local map stands in when Redis is unreachable so the
// service degrades instead of failing closed.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetEx writes a value with a TTL; ttl <= 0 means no expiry.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr atomically increments a counter key, creating it at 1.
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
