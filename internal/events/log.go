package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the logger. Used when EVENTS_BACKEND=none.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "outbox event",
		"event_id", event.ID,
		"event_type", event.Type,
		"aggregate_id", event.AggregateID,
		"payload_bytes", len(event.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
