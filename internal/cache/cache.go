// Package cache provides the TTL cache injected into catalog lookups.
//
// Values are stored as JSON so the in-memory and Redis implementations behave
// the same. Entries expire after the TTL given to Set; a TTL of zero uses the
// cache's default. Writers call Invalidate on every key they change.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get decodes the cached value into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
