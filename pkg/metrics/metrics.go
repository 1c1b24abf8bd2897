package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scan pipeline metrics
	ScansStarted   prometheus.Counter
	ScansCompleted prometheus.Counter
	ScansFailed    *prometheus.CounterVec
	ScanDuration   prometheus.Histogram

	// Extraction metrics
	ExtractedEntries prometheus.Histogram
	EmptyExtractions prometheus.Counter

	// Catalog matching metrics
	MatchAttempts *prometheus.CounterVec
	MatchLatency  prometheus.Histogram

	// External service metrics
	ExternalCalls   *prometheus.CounterVec
	ExternalLatency *prometheus.HistogramVec

	// Order metrics
	OrdersSubmitted *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		ScansStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scans_started_total",
			Help:      "Total number of scan sessions started",
		}),
		ScansCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scans_completed_total",
			Help:      "Total number of scan sessions that produced an order",
		}),
		ScansFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scans_failed_total",
			Help:      "Total number of failed scan sessions by stage",
		}, []string{"stage"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_duration_seconds",
			Help:      "Time from image intake to reconciliation readiness",
			Buckets:   prometheus.DefBuckets,
		}),
		ExtractedEntries: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "extracted_entries",
			Help:      "Number of medicine entries recovered per scan",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		EmptyExtractions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "empty_extractions_total",
			Help:      "Scans where no medicine lines were detected",
		}),
		MatchAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "match_attempts_total",
			Help:      "Catalog match attempts by outcome",
		}, []string{"outcome"}),
		MatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "match_latency_seconds",
			Help:      "Latency of the catalog match pass per scan",
			Buckets:   prometheus.DefBuckets,
		}),
		ExternalCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "external_calls_total",
			Help:      "Calls to external services by service and outcome",
		}, []string{"service", "outcome"}),
		ExternalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "external_latency_seconds",
			Help:      "Latency of external service calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		OrdersSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_submitted_total",
			Help:      "Order submissions by status",
		}, []string{"status"}),
	}
}
