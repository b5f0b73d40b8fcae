package events

import (
	"context"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

const defaultBatchSize = 100

// OutboxRelay moves committed events from the store's outbox to a Publisher.
// Delivery is at least once: an event published just before a failed mark is
// sent again on the next tick.
type OutboxRelay struct {
	source    store.OutboxReader
	publisher Publisher
	log       *zap.Logger
	interval  time.Duration
	batchSize int
}

func NewOutboxRelay(source store.OutboxReader, publisher Publisher, interval time.Duration, log *zap.Logger) *OutboxRelay {
	return &OutboxRelay{
		source:    source,
		publisher: publisher,
		log:       log,
		interval:  interval,
		batchSize: defaultBatchSize,
	}
}

// Run flushes the outbox every interval until ctx is done.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.log.Warn("outbox flush stopped", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Flush publishes one batch of pending events in order and returns how many
// were published. It stops at the first publish failure so later events for
// the same order are not sent ahead of it.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	pending, err := r.source.UnpublishedEvents(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, record := range pending {
		event, err := DecodeOrderEvent(record.Payload)
		if err != nil {
			// Undecodable payloads can never be published; skip them.
			r.log.Error("dropping malformed outbox event",
				zap.String("event_id", record.ID),
				zap.String("order_id", record.AggregateID),
				zap.Error(err))
		} else if err := r.publisher.Publish(ctx, event); err != nil {
			return published, err
		}

		if err := r.source.MarkEventPublished(ctx, record.ID); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}
