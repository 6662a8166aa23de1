package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Order metrics
	OrdersSubmitted prometheus.Counter
	OrdersRejected  prometheus.Counter
	OrdersFilled    prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersResting   prometheus.Counter

	// Trade metrics
	TradesTotal prometheus.Counter
	TradeVolume *prometheus.CounterVec
	TradeValue  *prometheus.CounterVec

	// Book metrics
	BookOrderCount *prometheus.GaugeVec
	BookBestBid    *prometheus.GaugeVec
	BookBestAsk    *prometheus.GaugeVec

	// Pipeline metrics
	PipelineDepth   prometheus.Gauge
	StageRejections *prometheus.CounterVec
	ProcessingTime  prometheus.Histogram

	// RabbitMQ metrics
	MQMessagesPublished *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		OrdersSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_submitted_total",
				Help: "Total number of orders accepted into the pipeline",
			},
		),
		OrdersRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_rejected_total",
				Help: "Total number of orders rejected by any stage",
			},
		),
		OrdersFilled: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_filled_total",
				Help: "Total number of orders fully filled",
			},
		),
		OrdersCancelled: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_cancelled_total",
				Help: "Total number of orders cancelled",
			},
		),
		OrdersResting: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_resting_total",
				Help: "Total number of orders that rested in a book",
			},
		),

		TradesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trades_total",
				Help: "Total number of trades executed",
			},
		),
		TradeVolume: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_volume_total",
				Help: "Total traded quantity by symbol",
			},
			[]string{"symbol"},
		),
		TradeValue: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_value_total",
				Help: "Total traded notional value by symbol",
			},
			[]string{"symbol"},
		),

		BookOrderCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "book_order_count",
				Help: "Resting orders per book",
			},
			[]string{"symbol"},
		),
		BookBestBid: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "book_best_bid",
				Help: "Best bid price per book",
			},
			[]string{"symbol"},
		),
		BookBestAsk: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "book_best_ask",
				Help: "Best ask price per book",
			},
			[]string{"symbol"},
		),

		PipelineDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_queue_depth",
				Help: "Orders waiting in the ingress queue",
			},
		),
		StageRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stage_rejections_total",
				Help: "Rejections by pipeline stage",
			},
			[]string{"stage"},
		),
		ProcessingTime: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "order_processing_seconds",
				Help:    "Time from ingress to terminal resolution",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
		),

		MQMessagesPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mq_messages_published_total",
				Help: "Messages published to RabbitMQ by routing key",
			},
			[]string{"routing_key"},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Cache misses",
			},
		),
	}
}
