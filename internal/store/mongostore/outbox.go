package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// outboxDocument is ordered by seq; ObjectIDs from one process increase
// monotonically.
type outboxDocument struct {
	ID          string             `bson:"_id"`
	Seq         primitive.ObjectID `bson:"seq"`
	AggregateID string             `bson:"aggregate_id"`
	EventType   string             `bson:"event_type"`
	Payload     []byte             `bson:"payload"`
	CreatedAt   time.Time          `bson:"created_at"`
	PublishedAt *time.Time         `bson:"published_at"`
}

func (t *tx) AppendEvent(ctx context.Context, event *store.OutboxEvent) error {
	now := t.store.timestamp()
	doc := outboxDocument{
		ID:          event.ID,
		Seq:         primitive.NewObjectID(),
		AggregateID: event.AggregateID,
		EventType:   event.EventType,
		Payload:     event.Payload,
		CreatedAt:   now,
	}
	if _, err := t.store.outbox.InsertOne(ctx, doc); err != nil {
		return store.Unavailable("insert outbox event", err)
	}

	event.CreatedAt = now
	return nil
}

func (s *Store) UnpublishedEvents(ctx context.Context, limit int) ([]*store.OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.outbox.Find(ctx, bson.M{"published_at": nil}, opts)
	if err != nil {
		return nil, store.Unavailable("find outbox events", err)
	}
	defer cursor.Close(ctx)

	var docs []outboxDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.Unavailable("decode outbox events", err)
	}

	events := make([]*store.OutboxEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, &store.OutboxEvent{
			ID:          doc.ID,
			AggregateID: doc.AggregateID,
			EventType:   doc.EventType,
			Payload:     doc.Payload,
			CreatedAt:   doc.CreatedAt.UTC(),
		})
	}
	return events, nil
}

func (s *Store) MarkEventPublished(ctx context.Context, id string) error {
	res, err := s.outbox.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"published_at": s.timestamp()}})
	if err != nil {
		return store.Unavailable("mark outbox event published", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox event %s: %w", id, store.ErrNotFound)
	}
	return nil
}
