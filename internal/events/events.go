package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderCreated  EventType = "order.created"
	OrderAccepted EventType = "order.accepted"
	OrderRejected EventType = "order.rejected"
	OrderUpdated  EventType = "order.updated"
	OrderDeleted  EventType = "order.deleted"
)

// OrderEvent describes a committed change to an order.
type OrderEvent struct {
	Type       EventType          `json:"type"`
	OrderID    string             `json:"order_id"`
	Status     domain.OrderStatus `json:"status"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewOrderEvent builds an event from the order state after the change.
func NewOrderEvent(eventType EventType, order *domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		OccurredAt: at,
	}
}

// Outbox encodes the event as an outbox record keyed by the order id.
func (e OrderEvent) Outbox(id string) (*store.OutboxEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return &store.OutboxEvent{
		ID:          id,
		AggregateID: e.OrderID,
		EventType:   string(e.Type),
		Payload:     payload,
	}, nil
}

func DecodeOrderEvent(payload []byte) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("unmarshal order event: %w", err)
	}
	return e, nil
}

// StatusEvent maps the status an order moved to onto its event type.
func StatusEvent(status domain.OrderStatus) EventType {
	switch status {
	case domain.OrderStatusAccepted:
		return OrderAccepted
	case domain.OrderStatusRejected:
		return OrderRejected
	}
	return OrderUpdated
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
