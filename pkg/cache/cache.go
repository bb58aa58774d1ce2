// Package cache stores derived artifacts keyed by content hashes.
//
// The pipeline uses it to skip re-flattening documents whose bytes have not
// changed since the last export. Keys come from a [Keyer] so that a change in
// export settings invalidates earlier entries.
//
// Two implementations are provided:
//   - [FileCache]: entries as JSON files under a directory of a billy filesystem
//   - [NullCache]: never stores anything (caching disabled)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// TTLExport is how long exported PNGs stay cached.
const TTLExport = 30 * 24 * time.Hour

// DefaultDir is the cache location relative to the output root.
const DefaultDir = ".stickerpack/cache"

// ExportKeyOpts are the settings that affect an exported image.
type ExportKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ExportKey returns the key for the PNG flattened from a document whose
	// encoded bytes hash to docHash.
	ExportKey(docHash string, opts ExportKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ExportKey implements Keyer.
func (DefaultKeyer) ExportKey(docHash string, opts ExportKeyOpts) string {
	return hashKey("export", docHash, opts)
}
