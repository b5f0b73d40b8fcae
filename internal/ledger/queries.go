package ledger

import (
	"context"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/stats"
)

func (l *Ledger) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return l.store.GetOrder(ctx, orderID)
}

// ListOrders returns orders newest first; an empty status lists all.
func (l *Ledger) ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, invalidInput("unknown order status %q", status)
	}
	return l.store.ListOrders(ctx, status)
}

// Stats reports order counts, revenue and best sellers for the period.
func (l *Ledger) Stats(ctx context.Context, period string) (*stats.Report, error) {
	p, err := stats.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	orders, err := l.store.ListOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	products, err := l.store.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	return stats.Compute(orders, products, p, l.now()), nil
}
