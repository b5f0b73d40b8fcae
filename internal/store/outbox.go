package store

import (
	"context"
	"time"
)

// OutboxEvent is an event recorded in the same transaction as the change it
// describes. A relay publishes it later and marks it published.
type OutboxEvent struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// OutboxWriter appends events inside a transaction.
type OutboxWriter interface {
	AppendEvent(ctx context.Context, event *OutboxEvent) error
}

// OutboxReader is used by the relay outside transactions.
type OutboxReader interface {
	// UnpublishedEvents returns up to limit events in the order they were appended.
	UnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)

	MarkEventPublished(ctx context.Context, id string) error
}
