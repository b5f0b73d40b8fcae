package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/redis/go-redis/v9"
)

const generationKey = "products:generation"

// setIfGeneration writes KEYS[2] only while the counter at KEYS[1] still
// equals ARGV[1]. A missing counter reads as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	if err := r.getJSON(ctx, productKey(productID), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r RedisCache) Set(ctx context.Context, generation int64, product *domain.Product) error {
	return r.setJSON(ctx, generation, productKey(product.ID), product)
}

func (r RedisCache) GetList(ctx context.Context, category domain.Category) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := r.getJSON(ctx, listKey(category), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetList(ctx context.Context, generation int64, category domain.Category, products []*domain.Product) error {
	return r.setJSON(ctx, generation, listKey(category), products)
}

func (r RedisCache) Generation(ctx context.Context) (int64, error) {
	generation, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return generation, nil
}

func (r RedisCache) Invalidate(ctx context.Context, productIDs ...string) error {
	keys := make([]string, 0, len(productIDs)+len(domain.Categories())+1)
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	keys = append(keys, listKey(""))
	for _, category := range domain.Categories() {
		keys = append(keys, listKey(category))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func (r RedisCache) getJSON(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) setJSON(ctx context.Context, generation int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(3)) * time.Minute
	ttl := r.baseTTL + jitter
	keys := []string{generationKey, key}
	if err := setIfGeneration.Run(ctx, r.client, keys, strconv.FormatInt(generation, 10), data, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

func listKey(category domain.Category) string {
	if category == "" {
		return "products:all"
	}
	return fmt.Sprintf("products:%s", category)
}
