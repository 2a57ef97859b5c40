package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for marketplace-level observability.
type BusinessMetrics struct {
	// Catalog
	ProductViews    *prometheus.CounterVec
	ProductSearches *prometheus.CounterVec

	// Cart
	CartItemsAdded   *prometheus.CounterVec
	CartItemsRemoved prometheus.Counter
	CartCleared      prometheus.Counter
	CartCacheLookups *prometheus.CounterVec

	// Checkout and payment
	OrdersCreated      prometheus.Counter
	OrderValue         prometheus.Histogram
	PaymentInitiations *prometheus.CounterVec
	PaymentSucceeded   *prometheus.CounterVec
	PaymentFailed      *prometheus.CounterVec
	PaymentMismatches  *prometheus.CounterVec
	RevenueCollected   *prometheus.CounterVec
	GatewayAPILatency  *prometheus.HistogramVec
	PaymentReinitiated prometheus.Counter

	// Webhooks
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec
	WebhookLatency   *prometheus.HistogramVec

	// Background work
	OutboxPublished   *prometheus.CounterVec
	OutboxFailed      *prometheus.CounterVec
	ReconcileSweeps   prometheus.Counter
	ReconcileOutcomes *prometheus.CounterVec
	JobDuration       *prometheus.HistogramVec
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return newBusinessMetrics(promauto.With(prometheus.DefaultRegisterer), namespace)
}

func newBusinessMetrics(f promauto.Factory, namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "isoko"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		// =======================================================================
		// Catalog
		// =======================================================================
		ProductViews: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_views_total",
				Help:      "Total single product lookups",
			},
			[]string{"vendor_id"},
		),
		ProductSearches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "product_searches_total",
				Help:      "Total product listings by filter type",
			},
			[]string{"filter_type"}, // filter_type: category, vendor, search, featured, none
		),

		// =======================================================================
		// Cart
		// =======================================================================
		CartItemsAdded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total successful add to cart actions",
			},
			[]string{"vendor_id"},
		),
		CartItemsRemoved: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_removed_total",
				Help:      "Total cart lines removed",
			},
		),
		CartCleared: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts emptied by the customer or by a paid order",
			},
		),
		CartCacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cache_lookups_total",
				Help:      "Cart cache lookups by result",
			},
			[]string{"result"}, // hit, miss, error
		),

		// =======================================================================
		// Checkout and payment
		// =======================================================================
		OrdersCreated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created from carts",
			},
		),
		OrderValue: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_rwf",
				Help:      "Order total in RWF",
				Buckets:   []float64{5000, 10000, 25000, 50000, 100000, 250000, 500000, 1000000},
			},
		),
		PaymentInitiations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_initiations_total",
				Help:      "Payment initiation attempts by gateway and result",
			},
			[]string{"gateway", "result"}, // result: ok, error
		),
		PaymentSucceeded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_succeeded_total",
				Help:      "Orders moved to PAID, by how the verdict arrived",
			},
			[]string{"gateway", "source"}, // source: webhook, sweep
		),
		PaymentFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_failed_total",
				Help:      "Payment attempts recorded as failed",
			},
			[]string{"gateway", "source"},
		),
		PaymentMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_mismatches_total",
				Help:      "Successful payments rejected for amount or currency mismatch",
			},
			[]string{"gateway", "field"}, // field: amount, currency
		),
		RevenueCollected: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "revenue_collected_rwf_total",
				Help:      "Total revenue from paid orders",
			},
			[]string{"gateway"},
		),
		GatewayAPILatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gateway_api_duration_seconds",
				Help:      "Payment gateway call duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"gateway", "operation"}, // operation: initiate, verify, find
		),
		PaymentReinitiated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_reinitiated_total",
				Help:      "Fresh payment attempts issued for pending orders",
			},
		),

		// =======================================================================
		// Webhooks
		// =======================================================================
		WebhookReceived: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total payment webhooks received",
			},
			[]string{"gateway"},
		),
		WebhookProcessed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_processed_total",
				Help:      "Payment webhooks handled, by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		WebhookFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_failed_total",
				Help:      "Payment webhooks rejected or failed",
			},
			[]string{"reason"}, // reason: signature, malformed, internal
		),
		WebhookLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_duration_seconds",
				Help:      "Payment webhook processing duration",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"gateway"},
		),

		// =======================================================================
		// Background work
		// =======================================================================
		OutboxPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "outbox_published_total",
				Help:      "Outbox events delivered to the broker",
			},
			[]string{"event_type"},
		),
		OutboxFailed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "outbox_failed_total",
				Help:      "Outbox publish attempts that failed",
			},
			[]string{"event_type"},
		),
		ReconcileSweeps: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_sweeps_total",
				Help:      "Pending-payment sweeps run",
			},
		),
		ReconcileOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_outcomes_total",
				Help:      "Orders examined by the sweep, by outcome",
			},
			[]string{"outcome"}, // paid, failed, pending, review, closed
		),
		JobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "job_duration_seconds",
				Help:      "Background job run duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job"},
		),
	}

	return m
}

// Global instance for easy access from services and handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
