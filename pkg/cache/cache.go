// Package cache provides byte-level caches for derived graph results.
//
// The graph engine never caches anything itself. Callers such as the
// pipeline store serialized query results here, keyed by the fingerprint of
// the graph they were computed from, so a changed workspace can never be
// served a stale answer.
//
// # Backends
//
//   - [NullCache]: stores nothing; used when caching is disabled
//   - [FileCache]: JSON entry files under a directory; the CLI default
//   - [MemoryCache]: bounded LRU in process memory
//   - [RedisCache]: shared cache in a Redis server
//
// All backends honour per-entry TTLs. A zero TTL means the entry never
// expires on its own.
//
// # Keys
//
// Use a [Keyer] to derive keys; [NewScopedKeyer] adds a namespace prefix so
// several workspaces can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true, or nil and false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL is the lifetime of cached query results.
const DefaultTTL = 24 * time.Hour
