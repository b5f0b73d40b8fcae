package ledger

import (
	"context"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

type CreateOrderInput struct {
	Customer domain.Customer `json:"customer"`
	Items    []OrderLine     `json:"items"`
}

// CreateOrder records a pending order. Every requested quantity must be in
// stock at creation time, but no stock is taken until the order is accepted.
// Item names and prices are copied from the products as they are now.
func (l *Ledger) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	customer, err := validateCustomer(in.Customer)
	if err != nil {
		return nil, err
	}
	lines, err := validateLines(in.Items, false)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:       l.newID(),
		Customer: customer,
		Status:   domain.OrderStatusPending,
	}

	err = l.inTx(ctx, "create order", func(ctx context.Context, tx store.Tx) error {
		requested := make(map[domain.StockKey]int, len(lines))
		for _, line := range lines {
			requested[domain.StockKey{ProductID: line.ProductID, Size: line.Size}] += line.Quantity
		}

		products, err := checkStock(ctx, tx, requested)
		if err != nil {
			return err
		}

		order.Items = make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			product := products[line.ProductID]
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Size:        line.Size,
				Color:       line.Color,
				Quantity:    line.Quantity,
				Price:       product.EffectivePrice(),
			})
		}
		order.TotalPrice = domain.ItemsTotal(order.Items)

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return l.recordEvent(ctx, tx, events.OrderCreated, order)
	})
	if err != nil {
		return nil, err
	}

	l.logger(ctx).Info("order created",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.String("total_price", order.TotalPrice.String()))
	return order, nil
}
