package utils

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	rstore "github.com/eko/gocache/store/ristretto/v4"
)

// Cache holds immutable on-chain metadata (token decimals) by key.
type Cache struct {
	manager *cache.Cache[[]byte]
	rcache  *ristretto.Cache
}

func NewCache() (*Cache, error) {
	rcache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	store_ := rstore.NewRistretto(rcache)
	manager := cache.New[[]byte](store_)
	return &Cache{manager: manager, rcache: rcache}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.manager.Get(ctx, key)
}

// Set stores value and returns once it is visible to Get; ristretto applies
// writes asynchronously.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.manager.Set(ctx, key, value, store.WithCost(int64(len(value)))); err != nil {
		return err
	}
	c.rcache.Wait()
	return nil
}
