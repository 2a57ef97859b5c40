// Package worker relays outbox events to the configured broker.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/isoko/internal/events"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/telemetry"
)

// OutboxStore is the subset of repository.Querier the relay needs.
type OutboxStore interface {
	ListUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]repository.OutboxEvent, error)
	MarkOutboxEventPublished(ctx context.Context, id pgtype.UUID) error
	MarkOutboxEventFailed(ctx context.Context, arg repository.MarkOutboxEventFailedParams) error
}

// Config holds worker configuration
type Config struct {
	// WorkerID identifies this instance in logs
	WorkerID string

	// PollInterval is how often the outbox is polled
	PollInterval time.Duration

	// BatchSize caps the rows read per poll
	BatchSize int32

	// MaxConcurrency bounds in-flight publishes
	MaxConcurrency int

	// PublishTimeout bounds a single broker call
	PublishTimeout time.Duration

	// AlertAfter reports an event to Sentry once it has failed this many times.
	// Delivery keeps retrying regardless.
	AlertAfter int32
}

// Worker polls the outbox and publishes unpublished events.
//
// Delivery is at-least-once: an event published but not yet marked is
// sent again on the next poll. Events for one order are published in
// creation order; different orders go out concurrently.
type Worker struct {
	config    Config
	store     OutboxStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewWorker creates a new outbox relay
func NewWorker(store OutboxStore, publisher events.Publisher, config Config, logger *slog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("outbox-%s", uuid.NewString()[:8])
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = 10 * time.Second
	}
	if config.AlertAfter <= 0 {
		config.AlertAfter = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:    config,
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "outbox", "worker_id", config.WorkerID),
	}
}

// Start polls until ctx is cancelled. The batch in flight at cancellation
// finishes before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"poll_interval", w.config.PollInterval,
		"batch_size", w.config.BatchSize,
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("outbox poll failed", "error", err)
			}
		}
	}
}

// BatchResult counts what one poll did.
type BatchResult struct {
	Published int
	Failed    int
}

// RunOnce publishes one batch of unpublished events.
func (w *Worker) RunOnce(ctx context.Context) (BatchResult, error) {
	defer telemetry.RecoverWithSentry()

	rows, err := w.store.ListUnpublishedOutboxEvents(ctx, w.config.BatchSize)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list outbox events: %w", err)
	}
	if len(rows) == 0 {
		return BatchResult{}, nil
	}

	var published, failed atomic.Int64

	// Rows arrive ordered by created_at, so each group keeps order.
	g := new(errgroup.Group)
	g.SetLimit(w.config.MaxConcurrency)
	for _, group := range groupByAggregate(rows) {
		g.Go(func() error {
			for _, row := range group {
				if ctx.Err() != nil {
					return nil
				}
				if w.relay(ctx, row) {
					published.Add(1)
					continue
				}
				failed.Add(1)
				// Later events for this order wait for the next poll.
				return nil
			}
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Published: int(published.Load()), Failed: int(failed.Load())}
	w.logger.Debug("outbox batch done",
		"published", result.Published,
		"failed", result.Failed,
	)
	return result, nil
}

// relay publishes one event and records the outcome. It reports whether
// the event was published.
func (w *Worker) relay(ctx context.Context, row repository.OutboxEvent) bool {
	event := toEvent(row)

	pubCtx, cancel := context.WithTimeout(ctx, w.config.PublishTimeout)
	err := w.publisher.Publish(pubCtx, event)
	cancel()

	if err != nil {
		w.recordFailure(ctx, row, event, err)
		return false
	}

	if markErr := w.store.MarkOutboxEventPublished(ctx, row.ID); markErr != nil {
		// Published but unmarked: the next poll sends it again.
		w.logger.Error("failed to mark outbox event published",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", markErr,
		)
	}
	if telemetry.Business != nil {
		telemetry.Business.OutboxPublished.WithLabelValues(event.Type).Inc()
	}
	return true
}

func (w *Worker) recordFailure(ctx context.Context, row repository.OutboxEvent, event events.Event, err error) {
	attempts := row.Attempts + 1
	w.logger.Warn("outbox publish failed",
		"event_id", event.ID,
		"event_type", event.Type,
		"order_id", event.AggregateID,
		"attempts", attempts,
		"error", err,
	)
	if telemetry.Business != nil {
		telemetry.Business.OutboxFailed.WithLabelValues(event.Type).Inc()
	}
	if attempts == w.config.AlertAfter {
		telemetry.CaptureError(err, map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"attempts":   attempts,
		})
	}

	if markErr := w.store.MarkOutboxEventFailed(ctx, repository.MarkOutboxEventFailedParams{
		ID:        row.ID,
		LastError: pgtype.Text{String: err.Error(), Valid: true},
	}); markErr != nil {
		w.logger.Error("failed to record outbox failure", "event_id", event.ID, "error", markErr)
	}
}

// groupByAggregate splits rows per order, keeping first-seen order.
func groupByAggregate(rows []repository.OutboxEvent) [][]repository.OutboxEvent {
	index := make(map[[16]byte]int)
	var groups [][]repository.OutboxEvent
	for _, row := range rows {
		i, ok := index[row.AggregateID.Bytes]
		if !ok {
			i = len(groups)
			index[row.AggregateID.Bytes] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row)
	}
	return groups
}

func toEvent(row repository.OutboxEvent) events.Event {
	return events.Event{
		ID:          uuid.UUID(row.ID.Bytes).String(),
		AggregateID: uuid.UUID(row.AggregateID.Bytes).String(),
		Type:        row.EventType,
		Payload:     row.Payload,
		CreatedAt:   row.CreatedAt.Time,
	}
}
