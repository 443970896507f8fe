package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for fetching and parsing bulletins.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	DocumentsTotal  prometheus.Counter
	RowsExtracted   prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	RangeDaysTotal  *prometheus.CounterVec
	CacheHitsTotal  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_requests_total",
			Help: "Total bulletin download requests by phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bulletin_request_duration_seconds",
			Help:    "Bulletin download latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	documents := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletin_documents_parsed_total",
			Help: "Total number of bulletin documents parsed.",
		},
	)
	rows := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletin_rows_extracted_total",
			Help: "Total number of price rows extracted from bulletins.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_errors_total",
			Help: "Total number of bulletin errors by type.",
		},
		[]string{"error_type"},
	)
	rangeDays := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulletin_range_days_total",
			Help: "Days processed in range mode by outcome.",
		},
		[]string{"status"},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bulletin_cache_hits_total",
			Help: "Single-day lookups served from the cache.",
		},
	)

	registry.MustRegister(requests, requestDuration, documents, rows, errorsTotal, rangeDays, cacheHits)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		DocumentsTotal:  documents,
		RowsExtracted:   rows,
		ErrorsTotal:     errorsTotal,
		RangeDaysTotal:  rangeDays,
		CacheHitsTotal:  cacheHits,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records a download duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// ObserveDocument counts one parsed document and its rows.
func (m *Metrics) ObserveDocument(rows int) {
	if m == nil {
		return
	}
	m.DocumentsTotal.Inc()
	m.RowsExtracted.Add(float64(rows))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncRangeDay counts one range-mode day by status.
func (m *Metrics) IncRangeDay(status string) {
	if m == nil {
		return
	}
	m.RangeDaysTotal.WithLabelValues(status).Inc()
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}
