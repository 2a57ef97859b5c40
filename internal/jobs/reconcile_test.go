package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/isoko/internal/domain"
)

type stubPayments struct {
	calls     atomic.Int32
	olderThan time.Duration
	result    *domain.SweepResult
	err       error
}

func (s *stubPayments) ReconcileWebhook(ctx context.Context, payload []byte, signature string) (*domain.ReconcileOutcome, error) {
	return nil, errors.New("not used")
}

func (s *stubPayments) VerifyTransaction(ctx context.Context, transactionID string) (*domain.PaymentVerification, error) {
	return nil, errors.New("not used")
}

func (s *stubPayments) ReconcilePending(ctx context.Context, olderThan time.Duration) (*domain.SweepResult, error) {
	s.calls.Add(1)
	s.olderThan = olderThan
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sweep must be bounded")
	}
	return s.result, s.err
}

func TestReconcileJob_RunOnce(t *testing.T) {
	var logs bytes.Buffer
	payments := &stubPayments{result: &domain.SweepResult{Checked: 4, Paid: 1, Failed: 1, StillPending: 1, NeedsReview: 1}}
	job := NewReconcileJob(payments, ReconcileConfig{Interval: time.Minute, OlderThan: 20 * time.Minute},
		slog.New(slog.NewJSONHandler(&logs, nil)))

	result, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 20*time.Minute, payments.olderThan)
	assert.Contains(t, logs.String(), "needing review")
	assert.Contains(t, logs.String(), `"needs_review":1`)
}

func TestReconcileJob_RunOnceError(t *testing.T) {
	var logs bytes.Buffer
	payments := &stubPayments{err: errors.New("list pending: connection refused")}
	job := NewReconcileJob(payments, ReconcileConfig{}, slog.New(slog.NewJSONHandler(&logs, nil)))

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, logs.String(), "reconcile sweep failed")
}

func TestReconcileJob_Defaults(t *testing.T) {
	job := NewReconcileJob(&stubPayments{}, ReconcileConfig{}, nil)
	assert.Equal(t, 5*time.Minute, job.config.Interval)
	assert.Equal(t, 15*time.Minute, job.config.OlderThan)
	assert.Equal(t, 5*time.Minute, job.config.RunTimeout)
}

func TestReconcileJob_Start(t *testing.T) {
	payments := &stubPayments{result: &domain.SweepResult{}}
	job := NewReconcileJob(payments, ReconcileConfig{Interval: 5 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Start(ctx) }()

	require.Eventually(t, func() bool { return payments.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}
