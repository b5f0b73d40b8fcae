// Package ledger keeps per-size product stock consistent with the order
// lifecycle. Stock is taken once when an order is accepted and given back
// when an accepted order is rejected, deleted or shrunk.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/cache"
	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/events"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Ledger struct {
	store store.Store
	cache cache.ProductCache
	log   *zap.Logger

	now        func() time.Time
	newID      func() string
	newEventID func() string
}

func NewLedger(st store.Store, productCache cache.ProductCache, log *zap.Logger) *Ledger {
	return &Ledger{
		store:      st,
		cache:      productCache,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
		newEventID: uuid.NewString,
	}
}

func (l *Ledger) logger(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, l.log)
}

// inTx runs fn in one store transaction. Errors the caller can act on pass
// through; anything else is reported as storage unavailable.
func (l *Ledger) inTx(ctx context.Context, op string, fn store.TxFunc) error {
	err := l.store.WithTx(ctx, fn)
	if err == nil {
		return nil
	}
	for _, known := range []error{
		store.ErrNotFound,
		store.ErrStorageUnavailable,
		ErrStockUnavailable,
		ErrInvalidInput,
		ErrInvalidTransition,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return store.Unavailable(op, err)
}

// recordEvent appends an event describing order to the outbox of tx, so it
// commits or rolls back with the change itself.
func (l *Ledger) recordEvent(ctx context.Context, tx store.Tx, eventType events.EventType, order *domain.Order) error {
	record, err := events.NewOrderEvent(eventType, order, l.now()).Outbox(l.newEventID())
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, record)
}

// invalidateProducts drops stale cache entries after a commit. It cannot
// undo the commit, so failures are only logged.
func (l *Ledger) invalidateProducts(ctx context.Context, productIDs []string) {
	if len(productIDs) == 0 {
		return
	}
	if err := l.cache.Invalidate(ctx, productIDs...); err != nil {
		l.logger(ctx).Warn("failed to invalidate product cache",
			zap.Strings("product_ids", productIDs), zap.Error(err))
	}
}
