package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the process-level collectors served on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	faceCheckins *prometheus.CounterVec
	mailsSent    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hrx",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		faceCheckins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "face",
			Name:      "checkins_total",
			Help:      "Face check-in attempts by outcome.",
		}, []string{"outcome"}),
		mailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Outgoing e-mails by template and result.",
		}, []string{"template", "result"}),
	}
}

// Registerer lets other packages attach their collectors to the same registry.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// FaceCheckin counts one attempt. outcome is matched, mismatch, rejected or error.
func (m *Metrics) FaceCheckin(outcome string) {
	if m != nil {
		m.faceCheckins.WithLabelValues(outcome).Inc()
	}
}

// MailSent counts one delivery attempt.
func (m *Metrics) MailSent(template string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mailsSent.WithLabelValues(template, result).Inc()
}
