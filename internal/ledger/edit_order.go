package ledger

import (
	"context"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

type lineKey struct {
	productID string
	size      string
	color     string
}

// EditOrderItems replaces the contents of an order. Lines with zero quantity
// are dropped. A line that matches an existing (product, size, color) keeps
// its original name and price; new lines are priced from the product now.
//
// For accepted orders stock is reconciled by the difference between the old
// and new quantities of each product size, all or nothing.
func (l *Ledger) EditOrderItems(ctx context.Context, orderID string, items []OrderLine) (*domain.Order, error) {
	lines, err := validateLines(items, true)
	if err != nil {
		return nil, err
	}

	var (
		order   *domain.Order
		touched []string
	)
	err = l.inTx(ctx, "edit order items", func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		existing := make(map[lineKey]domain.OrderItem, len(order.Items))
		for _, item := range order.Items {
			key := lineKey{item.ProductID, item.Size, item.Color}
			if _, ok := existing[key]; !ok {
				existing[key] = item
			}
		}

		involved := make(map[string]struct{}, len(lines))
		for _, line := range lines {
			involved[line.ProductID] = struct{}{}
		}
		if order.Status == domain.OrderStatusAccepted {
			for _, item := range order.Items {
				involved[item.ProductID] = struct{}{}
			}
		}
		products, err := loadProducts(ctx, tx, involved)
		if err != nil {
			return err
		}

		newItems := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			item, ok := existing[lineKey{line.ProductID, line.Size, line.Color}]
			if !ok {
				product, found := products[line.ProductID]
				if !found {
					return fmt.Errorf("load product %s: %w", line.ProductID, store.ErrProductNotFound)
				}
				item = domain.OrderItem{
					ProductID:   product.ID,
					ProductName: product.Name,
					Size:        line.Size,
					Color:       line.Color,
					Price:       product.EffectivePrice(),
				}
			}
			item.Quantity = line.Quantity
			newItems = append(newItems, item)
		}

		if order.Status == domain.OrderStatusAccepted {
			deltas := domain.Quantities(newItems)
			for key, quantity := range domain.Quantities(order.Items) {
				deltas[key] -= quantity
			}
			touched, err = l.applyStockDeltas(ctx, tx, deltas)
			if err != nil {
				return err
			}
		}

		order.Items = newItems
		order.TotalPrice = domain.ItemsTotal(newItems)
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		return l.recordEvent(ctx, tx, events.OrderUpdated, order)
	})
	if err != nil {
		return nil, err
	}

	l.logger(ctx).Info("order items updated",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status.String()),
		zap.Int("items", len(order.Items)),
		zap.Strings("stock_updated", touched))
	l.invalidateProducts(ctx, touched)

	return order, nil
}
