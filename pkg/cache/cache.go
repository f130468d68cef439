// Package cache stores rendered artifacts keyed by input hash, so repeated
// renders of an unchanged harness skip Graphviz layout entirely.
//
// Three backends implement the same interface:
//   - file: directory-based storage for CLI usage
//   - redis: shared storage for multi-instance serve deployments
//   - null: no-op backend when caching is disabled
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is the interface implemented by every artifact cache backend.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Open selects a backend from a spec string: "off" or "" disables caching,
// "redis://..." connects to Redis, anything else is a cache directory.
func Open(ctx context.Context, spec string) (Cache, error) {
	switch {
	case spec == "" || spec == "off":
		return NewNullCache(), nil
	case strings.HasPrefix(spec, "redis://") || strings.HasPrefix(spec, "rediss://"):
		return NewRedisCache(ctx, spec)
	default:
		return NewFileCache(spec)
	}
}
