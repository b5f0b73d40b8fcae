package cache

import (
	"context"
	"errors"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
)

// ProductCache caches storefront product reads.
//
// Every Invalidate bumps a generation counter. Readers take the generation
// before loading from the store and hand it to Set or SetList, which drop
// the write if an invalidation happened in between.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Set(ctx context.Context, generation int64, product *domain.Product) error

	// GetList and SetList cache a catalog listing; an empty category is the full catalog.
	GetList(ctx context.Context, category domain.Category) ([]*domain.Product, error)
	SetList(ctx context.Context, generation int64, category domain.Category, products []*domain.Product) error

	Generation(ctx context.Context) (int64, error)

	// Invalidate drops the given products and every cached listing.
	Invalidate(ctx context.Context, productIDs ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache never stores anything; every read is a miss.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.Product, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, int64, *domain.Product) error    { return nil }
func (NoopCache) GetList(context.Context, domain.Category) ([]*domain.Product, error) {
	return nil, ErrCacheMiss
}
func (NoopCache) SetList(context.Context, int64, domain.Category, []*domain.Product) error { return nil }
func (NoopCache) Generation(context.Context) (int64, error)                                { return 0, nil }
func (NoopCache) Invalidate(context.Context, ...string) error                              { return nil }
