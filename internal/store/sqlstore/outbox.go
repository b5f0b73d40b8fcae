package sqlstore

import (
	"context"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/store"
)

func (t *tx) AppendEvent(ctx context.Context, event *store.OutboxEvent) error {
	now := t.store.timestamp()

	_, err := t.q.ExecContext(ctx, `INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.AggregateID, event.EventType, string(event.Payload), now.UnixMilli())
	if err != nil {
		return store.Unavailable("insert outbox event", err)
	}

	event.CreatedAt = now
	return nil
}

func (s *Store) UnpublishedEvents(ctx context.Context, limit int) ([]*store.OutboxEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE published_at IS NULL ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, store.Unavailable("query outbox", err)
	}
	defer rows.Close()

	events := make([]*store.OutboxEvent, 0)
	for rows.Next() {
		var (
			e         store.OutboxEvent
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &createdAt); err != nil {
			return nil, store.Unavailable("scan outbox event", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("iterate outbox", err)
	}
	return events, nil
}

func (s *Store) MarkEventPublished(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE outbox_events SET published_at = $1 WHERE id = $2`,
		s.timestamp().UnixMilli(), id)
	if err != nil {
		return store.Unavailable("mark outbox event published", err)
	}
	return requireAffected(res, fmt.Errorf("outbox event %s: %w", id, store.ErrNotFound))
}
