// Package events delivers domain events to Kafka so connected UIs can refresh
// without polling. Publishing happens strictly after the database commit;
// delivery failures are logged and dropped, never surfaced to the caller.
package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"storeledger/internal/core"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event is the wire envelope. Key'd by order ID so all events for one order
// land on the same partition, preserving order.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

const (
	TypeOrderCreated    = "order.created"
	TypePaymentRecorded = "payment.recorded"
	TypeOrderCompleted  = "order.completed"
	TypeOrderCancelled  = "order.cancelled"
)

// KafkaPublisher writes events to a single topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, orderID int, payload any) {
	e := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
	value, err := json.Marshal(e)
	if err != nil {
		log.Printf("events: marshal %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(orderID)),
		Value: value,
	})
	if err != nil {
		log.Printf("events: publish %s order=%d: %v", eventType, orderID, err)
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, e core.OrderCreatedEvent) {
	p.publish(ctx, TypeOrderCreated, e.OrderID, e)
}

func (p *KafkaPublisher) PublishPaymentRecorded(ctx context.Context, e core.PaymentRecordedEvent) {
	p.publish(ctx, TypePaymentRecorded, e.OrderID, e)
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, e core.OrderCompletedEvent) {
	p.publish(ctx, TypeOrderCompleted, e.OrderID, e)
}

func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, e core.OrderCancelledEvent) {
	p.publish(ctx, TypeOrderCancelled, e.OrderID, e)
}

// NopPublisher discards all events. Used when KAFKA_BROKERS is unset and in
// tests.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, core.OrderCreatedEvent)       {}
func (NopPublisher) PublishPaymentRecorded(context.Context, core.PaymentRecordedEvent) {}
func (NopPublisher) PublishOrderCompleted(context.Context, core.OrderCompletedEvent)   {}
func (NopPublisher) PublishOrderCancelled(context.Context, core.OrderCancelledEvent)   {}
