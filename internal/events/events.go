// Package events publishes order lifecycle events written to the outbox.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types written to the outbox.
const (
	OrderCreated       = "order.created"
	OrderPaid          = "order.paid"
	OrderPaymentFailed = "order.payment_failed"
)

// Event is one outbox row ready for delivery.
type Event struct {
	ID          string
	AggregateID string
	Type        string
	Payload     []byte
	CreatedAt   time.Time
}

// Publisher delivers events to a broker. Delivery is at-least-once;
// consumers dedupe on the event ID header.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// OrderPayload is the JSON body of every order.* event.
type OrderPayload struct {
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TxRef         string    `json:"txRef"`
	Gateway       string    `json:"gateway,omitempty"`
	Total         int64     `json:"total"`
	Currency      string    `json:"currency"`
	CustomerEmail string    `json:"customerEmail"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Marshal encodes the payload for the outbox.
func (p OrderPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
