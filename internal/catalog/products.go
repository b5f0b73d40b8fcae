package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{ID: s.newID()}
	if err := apply(product, in); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, "create product", func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("product created",
		zap.String("product_id", product.ID),
		zap.String("category", product.Category.String()),
		zap.Int("total_quantity", product.TotalQuantity))
	s.invalidate(ctx, product.ID)
	return product, nil
}

// UpdateProduct replaces every editable field of the product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{ID: id}
	if err := apply(product, in); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, "update product", func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("product updated", zap.String("product_id", id))
	s.invalidate(ctx, id)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.inTx(ctx, "delete product", func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, s.log).Info("product deleted", zap.String("product_id", id))
	s.invalidate(ctx, id)
	return nil
}

// CreateSale sets a discounted price, which must be positive and below the sell price.
func (s *Service) CreateSale(ctx context.Context, id string, salePrice decimal.Decimal) (*domain.Product, error) {
	return s.updateSale(ctx, id, &salePrice)
}

func (s *Service) RemoveSale(ctx context.Context, id string) (*domain.Product, error) {
	return s.updateSale(ctx, id, nil)
}

func (s *Service) updateSale(ctx context.Context, id string, salePrice *decimal.Decimal) (*domain.Product, error) {
	var product *domain.Product
	err := s.inTx(ctx, "update sale", func(ctx context.Context, tx store.Tx) error {
		var err error
		product, err = tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := validateSale(product.SellPrice, salePrice); err != nil {
			return err
		}
		product.SalePrice = salePrice
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("product sale updated",
		zap.String("product_id", id),
		zap.Bool("on_sale", product.OnSale()))
	s.invalidate(ctx, id)
	return product, nil
}

func (s *Service) inTx(ctx context.Context, op string, fn store.TxFunc) error {
	err := s.store.WithTx(ctx, fn)
	if err == nil || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrStorageUnavailable) || errors.Is(err, ErrInvalidProduct) {
		return err
	}
	return store.Unavailable(op, err)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProduct, fmt.Sprintf(format, args...))
}

// apply validates in and copies it onto product.
func apply(product *domain.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" {
		return invalidf("name is required")
	}
	if description == "" {
		return invalidf("description is required")
	}
	if !in.Category.IsValid() {
		return invalidf("unknown category %q", in.Category)
	}
	if !in.SellPrice.IsPositive() {
		return invalidf("sell price must be positive")
	}
	if in.PurchasePrice != nil && in.PurchasePrice.IsNegative() {
		return invalidf("purchase price must not be negative")
	}
	if err := validateSale(in.SellPrice, in.SalePrice); err != nil {
		return err
	}

	colors := make([]string, 0, len(in.Colors))
	for _, c := range in.Colors {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	if len(colors) == 0 {
		return invalidf("at least one color is required")
	}

	sizes := make(domain.Sizes, len(in.Sizes))
	for size, quantity := range in.Sizes {
		if !in.Category.HasSize(size) {
			return invalidf("size %q is not offered in category %s", size, in.Category)
		}
		if quantity < 0 {
			return invalidf("stock of size %s must not be negative", size)
		}
		if quantity > domain.MaxSizeStock {
			return invalidf("stock of size %s exceeds %d", size, domain.MaxSizeStock)
		}
		sizes[size] = quantity
	}

	product.Name = name
	product.Description = description
	product.Category = in.Category
	product.Colors = colors
	product.Images = append([]string{}, in.Images...)
	product.PurchasePrice = in.PurchasePrice
	product.SellPrice = in.SellPrice
	product.SalePrice = in.SalePrice
	product.Sizes = sizes
	return nil
}

func validateSale(sellPrice decimal.Decimal, salePrice *decimal.Decimal) error {
	if salePrice == nil {
		return nil
	}
	if !salePrice.IsPositive() {
		return invalidf("sale price must be positive")
	}
	if !salePrice.LessThan(sellPrice) {
		return invalidf("sale price %s must be below sell price %s", salePrice, sellPrice)
	}
	return nil
}
