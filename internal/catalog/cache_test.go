package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/freshmart/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	types    []GoodsType
	featured []SKU
	calls    int
}

func (s *stubSource) ListTypes(context.Context) ([]GoodsType, error) {
	s.calls++
	return s.types, nil
}

func (s *stubSource) Featured(context.Context, int) ([]SKU, error) {
	return s.featured, nil
}

func newTestCache(t *testing.T) (*IndexCache, *stubSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	src := &stubSource{
		types:    []GoodsType{{ID: 1, Name: "fruit"}},
		featured: []SKU{{ID: 10, Name: "apple", PriceCents: 300}},
	}
	return &IndexCache{RDB: rdb, Ledger: src}, src, mr
}

func TestIndexCache_FillsOnMissAndServesFromCache(t *testing.T) {
	t.Parallel()

	cache, src, mr := newTestCache(t)
	ctx := context.Background()

	page, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fruit", page.Types[0].Name)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists(redisx.KeyIndexPage))

	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "a warm cache must not hit the catalog")
}

func TestIndexCache_ExpiresByTTL(t *testing.T) {
	t.Parallel()

	cache, src, mr := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)

	mr.FastForward(redisx.TTLIndexPage + 1)

	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestIndexCache_InvalidateForcesRebuild(t *testing.T) {
	t.Parallel()

	cache, src, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	src.types = []GoodsType{{ID: 1, Name: "fruit"}, {ID: 2, Name: "seafood"}}
	page, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Types, 2)
	assert.Equal(t, 2, src.calls)
}

func TestIndexCache_CorruptEntryRebuilds(t *testing.T) {
	t.Parallel()

	cache, _, mr := newTestCache(t)
	require.NoError(t, mr.Set(redisx.KeyIndexPage, "{not json"))

	page, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, page.Types)
}
