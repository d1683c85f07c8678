package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests served by the API, by status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "regionpulse_http_requests_total",
		Help: "Total number of HTTP requests served, by status code",
	}, []string{"code"})

	// RequestDuration observes per-request wall time in seconds.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "regionpulse_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"code"})

	// TableRecords is the number of telemetry records loaded at startup.
	TableRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "regionpulse_table_records",
		Help: "Number of telemetry records held in the in-memory table",
	})

	// IngestDroppedRows counts source rows dropped during numeric coercion.
	IngestDroppedRows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "regionpulse_ingest_dropped_rows_total",
		Help: "Total number of source rows dropped at load time",
	})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		TableRecords,
		IngestDroppedRows,
	)
}

// Instrument wraps next with request counting and duration observation.
func Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(RequestDuration,
		promhttp.InstrumentHandlerCounter(RequestsTotal, next))
}

// Handler serves the Prometheus exposition of all regionpulse collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
