package catalog

import (
	"context"
	"encoding/json"

	"github.com/freshmart/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

const featuredCount = 8

// PageSource supplies the catalog reads the index page is built from.
type PageSource interface {
	ListTypes(ctx context.Context) ([]GoodsType, error)
	Featured(ctx context.Context, limit int) ([]SKU, error)
}

// IndexCache is a read-through cache of the landing page payload. It fills
// lazily on miss, expires by TTL, and is invalidated explicitly when the
// catalog changes.
type IndexCache struct {
	RDB    *redis.Client
	Ledger PageSource
}

func (c *IndexCache) Get(ctx context.Context) (IndexPage, error) {
	if b, err := c.RDB.Get(ctx, redisx.KeyIndexPage).Bytes(); err == nil {
		var page IndexPage
		if err := json.Unmarshal(b, &page); err == nil {
			return page, nil
		}
		// corrupt entry: fall through and rebuild
	}
	return c.Rebuild(ctx)
}

func (c *IndexCache) Rebuild(ctx context.Context) (IndexPage, error) {
	types, err := c.Ledger.ListTypes(ctx)
	if err != nil {
		return IndexPage{}, err
	}
	featured, err := c.Ledger.Featured(ctx, featuredCount)
	if err != nil {
		return IndexPage{}, err
	}
	page := IndexPage{Types: types, Featured: featured}

	b, err := json.Marshal(page)
	if err != nil {
		return IndexPage{}, err
	}
	if err := c.RDB.Set(ctx, redisx.KeyIndexPage, b, redisx.TTLIndexPage).Err(); err != nil {
		return IndexPage{}, err
	}
	return page, nil
}

func (c *IndexCache) Invalidate(ctx context.Context) error {
	return c.RDB.Del(ctx, redisx.KeyIndexPage).Err()
}
