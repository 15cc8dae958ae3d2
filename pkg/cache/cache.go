// Package cache stores conversion results between runs.
//
// Converting a large layout is dominated by parsing and geometry work, and
// inputs rarely change between invocations, so results are cached keyed on
// the input file's content hash plus the conversion options. Three backends
// are provided:
//
//   - FileCache: a directory of JSON entries (the CLI default, under the
//     XDG cache dir)
//   - RedisCache: shared cache for fleet or CI usage
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
