// Package cache provides the JSON key-value cache used for product reads.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is a read-through cache whose fills are fenced by a per-key version.
// A reader takes the version before loading from the database and fills with
// SetIfVersion; a writer calls Invalidate after committing. A fill that
// started before an invalidation is then rejected instead of caching the old
// value.
type Cache interface {
	// Get decodes the cached value into value and reports whether the key was present.
	Get(ctx context.Context, key string, value any) (bool, error)
	// Version returns the number of times key has been invalidated.
	Version(ctx context.Context, key string) (int64, error)
	// SetIfVersion stores value only while key's version still equals version.
	// A non-positive ttl uses the cache's default.
	SetIfVersion(ctx context.Context, key string, version int64, value any, ttl time.Duration) (bool, error)
	// Invalidate bumps key's version and drops the cached value.
	Invalidate(ctx context.Context, key string) error
	Close() error
}

const ProductKeyPrefix = "product"

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

func ProductKey(id int64) string {
	return Key(ProductKeyPrefix, strconv.FormatInt(id, 10))
}

// VersionKey names the counter guarding key.
func VersionKey(key string) string {
	return key + ":version"
}

// Noop never stores anything. It stands in when redis is not configured.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Version(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Invalidate(context.Context, string) error       { return nil }
func (Noop) Close() error                                   { return nil }

func (Noop) SetIfVersion(context.Context, string, int64, any, time.Duration) (bool, error) {
	return false, nil
}
