package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry            *prometheus.Registry
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RowsScrapedTotal    prometheus.Counter
	RowsSkippedTotal    *prometheus.CounterVec
	EnrichmentGapsTotal *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodreads_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodreads_request_duration_seconds",
			Help:    "HTTP request latency for list and detail pages.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	rowsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goodreads_rows_scraped_total",
			Help: "Total number of enriched rows returned by the scraper.",
		},
	)
	rowsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodreads_rows_skipped_total",
			Help: "List rows dropped before reaching the dataset, by reason.",
		},
		[]string{"reason"},
	)
	gaps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodreads_enrichment_gaps_total",
			Help: "Detail fields that could not be extracted, by field.",
		},
		[]string{"field"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodreads_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, rowsScraped, rowsSkipped, gaps, errorsTotal)

	return &Metrics{
		Registry:            registry,
		RequestsTotal:       requests,
		RequestDuration:     requestDuration,
		RowsScrapedTotal:    rowsScraped,
		RowsSkippedTotal:    rowsSkipped,
		EnrichmentGapsTotal: gaps,
		ErrorsTotal:         errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// AddRows increments the rows scraped counter.
func (m *Metrics) AddRows(n int) {
	if m == nil {
		return
	}
	m.RowsScrapedTotal.Add(float64(n))
}

// IncSkipped counts a dropped list row.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.RowsSkippedTotal.WithLabelValues(reason).Inc()
}

// AddGap counts detail fields left absent.
func (m *Metrics) AddGap(field string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EnrichmentGapsTotal.WithLabelValues(field).Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
