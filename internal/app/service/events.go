package service

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is published after an order transaction commits.
type OrderEvent struct {
	Type       string           `json:"type"`
	OrderID    uint             `json:"order_id"`
	TotalPrice string           `json:"total_price"`
	Lines      []OrderEventLine `json:"lines"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type OrderEventLine struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// EventPublisher fans committed changes out to subscribers. Publishing
// never fails the operation that produced the event.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func newOrderEvent(eventType string, order *model.Order) OrderEvent {
	lines := make([]OrderEventLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderEventLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: model.FormatMoney(l.UnitPrice),
		})
	}
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		TotalPrice: model.FormatMoney(order.TotalPrice),
		Lines:      lines,
		OccurredAt: time.Now().UTC(),
	}
}
