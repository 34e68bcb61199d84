// Package metrics exposes the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration    *prometheus.HistogramVec
	AuthRejections     *prometheus.CounterVec
	BookmarkOperations *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	Registrations      prometheus.Counter
	NotificationsPrune prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		AuthRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialhub_auth_rejections_total",
			Help: "Requests rejected by the auth gate.",
		}, []string{"reason"}),
		BookmarkOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialhub_bookmark_operations_total",
			Help: "Bookmark operations by outcome.",
		}, []string{"op", "outcome"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialhub_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialhub_registrations_total",
			Help: "Profiles registered.",
		}),
		NotificationsPrune: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialhub_notifications_pruned_total",
			Help: "Read notifications deleted by the pruner.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.AuthRejections,
		m.BookmarkOperations,
		m.LoginAttempts,
		m.Registrations,
		m.NotificationsPrune,
	)
	return m
}

// Registry returns the registry backing Handler. Tests gather from it.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument records request duration labelled by the chi route pattern, so
// /profile/1 and /profile/2 share a series.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// The helpers below are safe on a nil *Metrics, so services built without
// metrics (tests, tools) need no guards.

func (m *Metrics) AuthRejected(reason string) {
	if m != nil {
		m.AuthRejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Bookmark(op, outcome string) {
	if m != nil {
		m.BookmarkOperations.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Registered() {
	if m != nil {
		m.Registrations.Inc()
	}
}

func (m *Metrics) Pruned(n int64) {
	if m != nil && n > 0 {
		m.NotificationsPrune.Add(float64(n))
	}
}
