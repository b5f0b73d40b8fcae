package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	published []OrderEvent
	failAfter int // fail once this many events were published; <0 never fails
}

func (p *recordingPublisher) Publish(_ context.Context, event OrderEvent) error {
	if p.failAfter >= 0 && len(p.published) >= p.failAfter {
		return errors.New("broker down")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func appendEvents(t *testing.T, st store.Store, types ...EventType) {
	t.Helper()
	order := &domain.Order{ID: "order-1", Status: domain.OrderStatusPending, TotalPrice: decimal.NewFromInt(10)}
	for i, eventType := range types {
		record, err := NewOrderEvent(eventType, order, time.Now()).Outbox(string(rune('a' + i)))
		require.NoError(t, err)
		require.NoError(t, st.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			return tx.AppendEvent(ctx, record)
		}))
	}
}

func TestOutboxRelay_PublishesInOrderAndMarks(t *testing.T) {
	st := store.NewMemoryStore()
	appendEvents(t, st, OrderCreated, OrderAccepted, OrderDeleted)
	publisher := &recordingPublisher{failAfter: -1}
	relay := NewOutboxRelay(st, publisher, time.Second, zap.NewNop())

	n, err := relay.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, publisher.published, 3)
	assert.Equal(t, OrderCreated, publisher.published[0].Type)
	assert.Equal(t, OrderDeleted, publisher.published[2].Type)
	assert.Equal(t, "order-1", publisher.published[0].OrderID)

	pending, err := st.UnpublishedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelay_StopsAtFirstFailure(t *testing.T) {
	st := store.NewMemoryStore()
	appendEvents(t, st, OrderCreated, OrderAccepted, OrderRejected)
	publisher := &recordingPublisher{failAfter: 1}
	relay := NewOutboxRelay(st, publisher, time.Second, zap.NewNop())

	n, err := relay.Flush(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, n)
	pending, err := st.UnpublishedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, string(OrderAccepted), pending[0].EventType)

	publisher.failAfter = -1
	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, OrderAccepted, publisher.published[1].Type)
}

func TestOutboxRelay_SkipsMalformedPayload(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.AppendEvent(ctx, &store.OutboxEvent{ID: "bad", AggregateID: "o", EventType: "x", Payload: []byte("{")})
	}))
	appendEvents(t, st, OrderCreated)
	publisher := &recordingPublisher{failAfter: -1}

	n, err := NewOutboxRelay(st, publisher, time.Second, zap.NewNop()).Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, publisher.published, 1)
}

func TestOutboxRelay_RunStopsWithContext(t *testing.T) {
	st := store.NewMemoryStore()
	appendEvents(t, st, OrderCreated)
	publisher := &recordingPublisher{failAfter: -1}
	relay := NewOutboxRelay(st, publisher, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		pending, err := st.UnpublishedEvents(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
