// Package seed loads a starter catalog from YAML into an empty store.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type ProductLister interface {
	ListProducts(ctx context.Context, category domain.Category) ([]*domain.Product, error)
}

type ProductCreator interface {
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
}

type File struct {
	Products []Product `yaml:"products"`
}

// Product mirrors catalog.ProductInput with prices written as strings.
type Product struct {
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	Category      string         `yaml:"category"`
	Colors        []string       `yaml:"colors"`
	Images        []string       `yaml:"images"`
	PurchasePrice string         `yaml:"purchase_price"`
	SellPrice     string         `yaml:"sell_price"`
	SalePrice     string         `yaml:"sale_price"`
	Sizes         map[string]int `yaml:"sizes"`
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

func (p Product) input() (catalog.ProductInput, error) {
	in := catalog.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    domain.Category(p.Category),
		Colors:      p.Colors,
		Images:      p.Images,
		Sizes:       domain.Sizes(p.Sizes),
	}

	var err error
	if in.SellPrice, err = decimal.NewFromString(p.SellPrice); err != nil {
		return in, fmt.Errorf("product %q: sell_price: %w", p.Name, err)
	}
	if in.PurchasePrice, err = optionalPrice(p.PurchasePrice); err != nil {
		return in, fmt.Errorf("product %q: purchase_price: %w", p.Name, err)
	}
	if in.SalePrice, err = optionalPrice(p.SalePrice); err != nil {
		return in, fmt.Errorf("product %q: sale_price: %w", p.Name, err)
	}
	return in, nil
}

func optionalPrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile seeds the products listed in path when the store holds none.
// It returns how many products were created.
func LoadFile(ctx context.Context, path string, st ProductLister, creator ProductCreator, log *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return 0, err
	}
	return Apply(ctx, f, st, creator, log)
}

func Apply(ctx context.Context, f *File, st ProductLister, creator ProductCreator, log *zap.Logger) (int, error) {
	existing, err := st.ListProducts(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Info("catalog not empty, skipping seed", zap.Int("products", len(existing)))
		return 0, nil
	}

	created := 0
	for _, p := range f.Products {
		in, err := p.input()
		if err != nil {
			return created, err
		}
		if _, err := creator.CreateProduct(ctx, in); err != nil {
			return created, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		created++
	}

	log.Info("catalog seeded", zap.Int("products", created))
	return created, nil
}
