package ports

import (
	"context"
	"time"
)

// Cache is a best-effort byte cache for computed dashboard responses.
// Get returns (nil, nil) on a miss. Implementations being unavailable must
// surface as errors the caller can ignore, never as panics.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
