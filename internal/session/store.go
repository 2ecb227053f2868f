package session

import (
	"context"
	"time"
)

// Store is the narrow persistence surface the session manager needs. The
// production implementation is redis; anything honoring per-key atomicity
// can substitute in tests.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// KeyScanner is implemented by stores that can enumerate keys by pattern.
// The periodic sweep needs it to find per-user session sets.
type KeyScanner interface {
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}
