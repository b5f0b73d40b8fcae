package ledger

import (
	"context"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

// DeleteOrder removes an order, returning its quantities to stock first if it was accepted.
func (l *Ledger) DeleteOrder(ctx context.Context, orderID string) error {
	var (
		order   *domain.Order
		touched []string
	)
	err := l.inTx(ctx, "delete order", func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == domain.OrderStatusAccepted {
			touched, err = l.applyStockDeltas(ctx, tx, negate(domain.Quantities(order.Items)))
			if err != nil {
				return err
			}
		}
		if err := tx.DeleteOrder(ctx, orderID); err != nil {
			return err
		}
		return l.recordEvent(ctx, tx, events.OrderDeleted, order)
	})
	if err != nil {
		return err
	}

	l.logger(ctx).Info("order deleted",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status.String()),
		zap.Strings("stock_restored", touched))
	l.invalidateProducts(ctx, touched)

	return nil
}
