package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Domain events emitted after a successful commit. Connected UIs use these to
// refresh without polling; nothing in the core depends on delivery succeeding.

type OrderItemEvent struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type OrderCreatedEvent struct {
	OrderID    int              `json:"order_id"`
	CustomerID int              `json:"customer_id"`
	OrderType  OrderType        `json:"order_type"`
	TotalCost  decimal.Decimal  `json:"total_cost"`
	Items      []OrderItemEvent `json:"items"`
	CreatedAt  time.Time        `json:"created_at"`
}

type PaymentRecordedEvent struct {
	OrderID        int             `json:"order_id"`
	Day            int             `json:"day"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

type OrderCompletedEvent struct {
	OrderID     int             `json:"order_id"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	CompletedAt time.Time       `json:"completed_at"`
}

type OrderCancelledEvent struct {
	OrderID     int       `json:"order_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// EventPublisher delivers domain events to interested consumers. Publish
// failures must never fail the already-committed operation; implementations
// log and move on.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent)
	PublishPaymentRecorded(ctx context.Context, e PaymentRecordedEvent)
	PublishOrderCompleted(ctx context.Context, e OrderCompletedEvent)
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent)
}
