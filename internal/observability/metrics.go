package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric instruments.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	SchemaSavesTotal        *prometheus.CounterVec
	SchemaImportsTotal      *prometheus.CounterVec
	SubmissionsTotal        *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	FormsDeletedTotal       prometheus.Counter
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formbuilder_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formbuilder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		SchemaSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formbuilder_schema_saves_total",
			Help: "Total number of schema saves.",
		}, []string{"operation"}), // create | update
		SchemaImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formbuilder_schema_imports_total",
			Help: "Total number of schema imports.",
		}, []string{"status"}), // accepted | rejected
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formbuilder_submissions_total",
			Help: "Total number of persisted submissions.",
		}, []string{"kind"}), // draft | final
		ValidationFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formbuilder_validation_failures_total",
			Help: "Total number of finalize attempts rejected by validation.",
		}, []string{"form_id"}),
		FormsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formbuilder_forms_deleted_total",
			Help: "Total number of deleted forms (cascading submissions).",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SchemaSavesTotal,
		m.SchemaImportsTotal,
		m.SubmissionsTotal,
		m.ValidationFailuresTotal,
		m.FormsDeletedTotal,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordSchemaSave records a schema create or update.
func (m *Metrics) RecordSchemaSave(operation string) {
	m.SchemaSavesTotal.WithLabelValues(operation).Inc()
}

// RecordSchemaImport records an import attempt outcome.
func (m *Metrics) RecordSchemaImport(status string) {
	m.SchemaImportsTotal.WithLabelValues(status).Inc()
}

// RecordSubmission records a persisted submission by kind.
func (m *Metrics) RecordSubmission(isDraft bool) {
	kind := "final"
	if isDraft {
		kind = "draft"
	}
	m.SubmissionsTotal.WithLabelValues(kind).Inc()
}

// RecordValidationFailure records a finalize attempt blocked by
// validation.
func (m *Metrics) RecordValidationFailure(formID string) {
	m.ValidationFailuresTotal.WithLabelValues(formID).Inc()
}

// RecordFormDeleted records a form deletion.
func (m *Metrics) RecordFormDeleted() {
	m.FormsDeletedTotal.Inc()
}

// MetricsMiddleware returns HTTP middleware that records request
// metrics using chi's route pattern (not the actual URL path) to avoid
// label cardinality explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context,
// falling back to the raw URL path.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}
