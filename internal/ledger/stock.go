package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

// applyStockDeltas subtracts each delta from the matching product size:
// positive deltas take stock, negative deltas return it. Products are
// written once each, in id order. A product that no longer exists is
// skipped when it would only receive stock back.
// It returns the ids of the products written.
func (l *Ledger) applyStockDeltas(ctx context.Context, tx store.Tx, deltas map[domain.StockKey]int) ([]string, error) {
	byProduct := make(map[string]map[string]int)
	for key, delta := range deltas {
		if delta == 0 {
			continue
		}
		if byProduct[key.ProductID] == nil {
			byProduct[key.ProductID] = make(map[string]int)
		}
		byProduct[key.ProductID][key.Size] += delta
	}

	touched := make([]string, 0, len(byProduct))
	for _, productID := range sortedKeys(byProduct) {
		sizeDeltas := byProduct[productID]

		product, err := tx.GetProduct(ctx, productID)
		if errors.Is(err, store.ErrProductNotFound) && onlyReturns(sizeDeltas) {
			l.logger(ctx).Warn("skipping stock restore for missing product",
				zap.String("product_id", productID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", productID, err)
		}

		sizes := product.Sizes.Clone()
		for _, size := range sortedKeys(sizeDeltas) {
			delta := sizeDeltas[size]
			next := sizes[size] - delta
			if next < 0 {
				return nil, &StockUnavailableError{
					ProductID:   productID,
					ProductName: product.Name,
					Size:        size,
					Requested:   delta,
					Available:   sizes[size],
				}
			}
			sizes[size] = next
		}

		if err := tx.PutProductSizes(ctx, productID, sizes); err != nil {
			return nil, fmt.Errorf("update stock of product %s: %w", productID, err)
		}
		touched = append(touched, productID)
	}
	return touched, nil
}

// checkStock verifies every requested quantity is in stock without taking it.
func checkStock(ctx context.Context, tx store.Tx, requested map[domain.StockKey]int) (map[string]*domain.Product, error) {
	keys := make([]domain.StockKey, 0, len(requested))
	for key := range requested {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].Size < keys[j].Size
	})

	products := make(map[string]*domain.Product)
	for _, key := range keys {
		product, ok := products[key.ProductID]
		if !ok {
			var err error
			product, err = tx.GetProduct(ctx, key.ProductID)
			if err != nil {
				return nil, fmt.Errorf("load product %s: %w", key.ProductID, err)
			}
			products[key.ProductID] = product
		}

		if available := product.Sizes[key.Size]; available < requested[key] {
			return nil, &StockUnavailableError{
				ProductID:   key.ProductID,
				ProductName: product.Name,
				Size:        key.Size,
				Requested:   requested[key],
				Available:   available,
			}
		}
	}
	return products, nil
}

// loadProducts reads each product once, in id order, so transactions that
// touch overlapping products take their row locks in the same order.
// Missing products are left out of the result.
func loadProducts(ctx context.Context, tx store.Tx, ids map[string]struct{}) (map[string]*domain.Product, error) {
	products := make(map[string]*domain.Product, len(ids))
	for _, id := range sortedKeys(ids) {
		product, err := tx.GetProduct(ctx, id)
		if errors.Is(err, store.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", id, err)
		}
		products[id] = product
	}
	return products, nil
}

func onlyReturns(sizeDeltas map[string]int) bool {
	for _, delta := range sizeDeltas {
		if delta > 0 {
			return false
		}
	}
	return true
}

// negate flips every quantity, turning a debit into a restore.
func negate(quantities map[domain.StockKey]int) map[domain.StockKey]int {
	out := make(map[domain.StockKey]int, len(quantities))
	for key, quantity := range quantities {
		out[key] = -quantity
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
