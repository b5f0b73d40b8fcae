package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func newTestProduct(id string) *domain.Product {
	sale := decimal.RequireFromString("89.90")
	return &domain.Product{
		ID:            id,
		Name:          "Linen shirt",
		Category:      domain.CategoryShirts,
		Colors:        []string{"white"},
		SellPrice:     decimal.RequireFromString("119.90"),
		SalePrice:     &sale,
		Sizes:         domain.Sizes{"M": 4, "L": 1},
		TotalQuantity: 5,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	product := newTestProduct("p1")

	data, err := json.Marshal(product)
	require.NoError(t, err)
	require.NoError(t, mr.Set(productKey("p1"), string(data)))

	result, err := cache.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Linen shirt", result.Name)
	assert.True(t, product.SellPrice.Equal(result.SellPrice))
	require.NotNil(t, result.SalePrice)
	assert.True(t, product.SalePrice.Equal(*result.SalePrice))
	assert.Equal(t, domain.Sizes{"M": 4, "L": 1}, result.Sizes)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(productKey("p1"), "{not json"))

	_, err := cache.Get(context.Background(), "p1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_StoresWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), 0, newTestProduct("p1")))

	assert.True(t, mr.Exists(productKey("p1")))
	ttl := mr.TTL(productKey("p1"))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 13*time.Minute)
}

func TestSetList_GetList(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	products := []*domain.Product{newTestProduct("p1"), newTestProduct("p2")}
	require.NoError(t, cache.SetList(ctx, 0, domain.CategoryShirts, products))

	got, err := cache.GetList(ctx, domain.CategoryShirts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[1].ID)

	_, err = cache.GetList(ctx, "")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidate_DropsProductsAndListings(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 0, newTestProduct("p1")))
	require.NoError(t, cache.Set(ctx, 0, newTestProduct("p2")))
	require.NoError(t, cache.SetList(ctx, 0, "", []*domain.Product{newTestProduct("p1")}))
	require.NoError(t, cache.SetList(ctx, 0, domain.CategoryShirts, []*domain.Product{newTestProduct("p1")}))

	require.NoError(t, cache.Invalidate(ctx, "p1"))

	assert.False(t, mr.Exists(productKey("p1")))
	assert.True(t, mr.Exists(productKey("p2")))
	assert.False(t, mr.Exists(listKey("")))
	assert.False(t, mr.Exists(listKey(domain.CategoryShirts)))
}

func TestSet_DroppedAfterInvalidate(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	stale, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "p1"))

	require.NoError(t, cache.Set(ctx, stale, newTestProduct("p1")))
	require.NoError(t, cache.SetList(ctx, stale, "", []*domain.Product{newTestProduct("p1")}))
	assert.False(t, mr.Exists(productKey("p1")))
	assert.False(t, mr.Exists(listKey("")))

	current, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, stale+1, current)

	require.NoError(t, cache.Set(ctx, current, newTestProduct("p1")))
	got, err := cache.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}

func TestRedisDown_ReturnsError(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "p1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
