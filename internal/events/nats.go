package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// natsConn is the subset of *nats.Conn used by NATSPublisher.
type natsConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes each event on "<prefix>.<event type>".
type NATSPublisher struct {
	conn   natsConn
	prefix string
}

// NewNATSPublisher connects to url. The connection reconnects forever.
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("isoko-outbox"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: nc, prefix: strings.TrimSuffix(subjectPrefix, ".")}, nil
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	msg := natsMessage(p.subject(event.Type), event)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", msg.Subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func natsMessage(subject string, event Event) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Data = event.Payload
	msg.Header.Set(nats.MsgIdHdr, event.ID)
	msg.Header.Set("Event-Type", event.Type)
	msg.Header.Set("Aggregate-Id", event.AggregateID)
	return msg
}
