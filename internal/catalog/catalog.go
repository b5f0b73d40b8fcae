// Package catalog manages storefront products: admin writes, sale prices
// and cached storefront reads.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/cache"
	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidProduct = errors.New("invalid product")

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      domain.Category  `json:"category"`
	Colors        []string         `json:"colors"`
	Images        []string         `json:"images"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SellPrice     decimal.Decimal  `json:"sell_price"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	Sizes         domain.Sizes     `json:"sizes"`
}

type Service struct {
	store store.Store
	cache cache.ProductCache
	log   *zap.Logger
	sfg   singleflight.Group // collapses concurrent cache misses

	newID func() string
}

func NewService(st store.Store, productCache cache.ProductCache, log *zap.Logger) *Service {
	return &Service{
		store: st,
		cache: productCache,
		log:   log,
		newID: uuid.NewString,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do("product:"+id, func() (interface{}, error) {
		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("cache get error", zap.String("product_id", id), zap.Error(err))
		}

		generation, genErr := s.cache.Generation(ctx)
		product, err = s.store.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			logger.FromContext(ctx, s.log).Warn("cache generation error", zap.Error(genErr))
			return product, nil
		}

		go func(p *domain.Product) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, generation, p); err != nil {
				s.log.Warn("cache set error", zap.String("product_id", p.ID), zap.Error(err))
			}
		}(product.Clone())

		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product).Clone(), nil
}

// ListProducts returns products newest first. An empty category lists the
// whole catalog; a non-empty query keeps products whose name, description or
// category contains it, ignoring case.
func (s *Service) ListProducts(ctx context.Context, category domain.Category, query string) ([]*domain.Product, error) {
	if category != "" && !category.IsValid() {
		return nil, invalidf("unknown category %q", category)
	}

	v, err, _ := s.sfg.Do("products:"+string(category), func() (interface{}, error) {
		products, err := s.cache.GetList(ctx, category)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).Warn("cache get list error", zap.String("category", string(category)), zap.Error(err))
		}

		generation, genErr := s.cache.Generation(ctx)
		products, err = s.store.ListProducts(ctx, category)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			logger.FromContext(ctx, s.log).Warn("cache generation error", zap.Error(genErr))
			return products, nil
		}

		snapshot := make([]*domain.Product, len(products))
		for i, p := range products {
			snapshot[i] = p.Clone()
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetList(ctx, generation, category, snapshot); err != nil {
				s.log.Warn("cache set list error", zap.String("category", string(category)), zap.Error(err))
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	shared := v.([]*domain.Product)
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]*domain.Product, 0, len(shared))
	for _, p := range shared {
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func matches(p *domain.Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(string(p.Category)), query)
}

// AvailableSizes lists the sizes of product that have stock, in category order.
func AvailableSizes(product *domain.Product) []string {
	sizes := make([]string, 0, len(product.Sizes))
	for _, label := range product.Category.SizeLabels() {
		if product.Sizes[label] > 0 {
			sizes = append(sizes, label)
		}
	}
	return sizes
}

func (s *Service) invalidate(ctx context.Context, ids ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		logger.FromContext(ctx, s.log).Warn("cache invalidate error", zap.Strings("product_ids", ids), zap.Error(err))
	}
}
