// Package cache holds short-lived shared counters: rate-limit windows and
// processed webhook event ids. Redis backs them when configured so several
// instances share state; otherwise they live in process memory.
package cache

import (
	"context"
	"time"
)

// Store is the contract shared by the in-memory and Redis stores.
type Store interface {
	// Incr increments the fixed-window counter for key. The window starts on the
	// first increment; ttl is the time left until the counter resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// MarkProcessed records id for ttl. It returns false if id was already recorded.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	Close() error
}

const (
	rateLimitPrefix = "ratelimit:"
	eventPrefix     = "webhook:event:"
)
