package ledger

import (
	"context"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

// SetOrderStatus moves an order to accepted or rejected.
//
// Accepting a pending order takes its quantities from stock; if any size
// falls short nothing is written and the order stays pending. Rejecting an
// accepted order gives its quantities back. Rejected orders cannot be
// accepted again. Every other allowed move only changes the status.
func (l *Ledger) SetOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if next != domain.OrderStatusAccepted && next != domain.OrderStatusRejected {
		return nil, invalidInput("status must be %s or %s, got %q",
			domain.OrderStatusAccepted, domain.OrderStatusRejected, next)
	}

	var (
		order   *domain.Order
		prev    domain.OrderStatus
		touched []string
	)
	err := l.inTx(ctx, "set order status", func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		prev = order.Status

		if !prev.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
		}

		switch {
		case prev == domain.OrderStatusPending && next == domain.OrderStatusAccepted:
			touched, err = l.applyStockDeltas(ctx, tx, domain.Quantities(order.Items))
		case prev == domain.OrderStatusAccepted && next == domain.OrderStatusRejected:
			touched, err = l.applyStockDeltas(ctx, tx, negate(domain.Quantities(order.Items)))
		}
		if err != nil {
			return err
		}

		order.Status = next
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		if prev == next {
			return nil
		}
		return l.recordEvent(ctx, tx, events.StatusEvent(next), order)
	})
	if err != nil {
		return nil, err
	}

	if prev == next {
		return order, nil
	}

	l.logger(ctx).Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
		zap.Strings("stock_updated", touched))
	l.invalidateProducts(ctx, touched)

	return order, nil
}
