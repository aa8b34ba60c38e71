package cache

import "context"

// Store is the cache contract the AI service depends on. Manager serves
// single-instance deployments; Service shares entries through redis.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

var (
	_ Store = (*Manager)(nil)
	_ Store = (*Service)(nil)
)
