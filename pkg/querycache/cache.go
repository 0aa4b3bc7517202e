// Package querycache stores fetched query results under keys derived from
// the API contract.
package querycache

import (
	"context"
	"strings"
	"time"
)

// Cache keeps raw query payloads. InvalidatePrefix removes the entry stored
// under prefix and every entry nested below it (prefix + ":" + ...).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Sep joins key parts.
const Sep = ":"

// Key joins query key parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, Sep)
}

func covers(prefix, key string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+Sep)
}
