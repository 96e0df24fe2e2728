// Package metrics exposes Prometheus counters for estimates, diagnoses,
// history writes, replayed hours and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/simulator"
)

const namespace = "joule"

// Metrics owns a private registry. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	estimatesTotal    *prometheus.CounterVec
	estimateDuration  *prometheus.HistogramVec
	diagnosesTotal    *prometheus.CounterVec
	historyWrites     *prometheus.CounterVec
	simulatedHours    *prometheus.CounterVec
	wsDropped         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		estimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Cost estimates computed by kind (weekly, annual).",
		}, []string{"kind"}),
		estimateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimate_duration_seconds",
			Help:      "Time spent computing cost estimates by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		diagnosesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnoses_total",
			Help:      "Bill diagnoses by gap class.",
		}, []string{"class"}),
		historyWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Bill history writes by result.",
		}, []string{"result"}),
		simulatedHours: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulated_hours_total",
			Help:      "Hours replayed through the performance model by mode.",
		}, []string{"mode"}),
		wsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_dropped_messages_total",
			Help:      "Replay messages dropped for slow WebSocket clients by message type.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.estimatesTotal,
		m.estimateDuration,
		m.diagnosesTotal,
		m.historyWrites,
		m.simulatedHours,
		m.wsDropped,
	)
	return m
}

// Registry returns the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Estimate records one finished estimate of the given kind.
func (m *Metrics) Estimate(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.estimatesTotal.WithLabelValues(kind).Inc()
	m.estimateDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) Diagnosis(class model.GapClass) {
	if m == nil {
		return
	}
	m.diagnosesTotal.WithLabelValues(string(class)).Inc()
}

func (m *Metrics) HistoryWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.historyWrites.WithLabelValues(result).Inc()
}

// WSDropped counts one replay message dropped for a slow client.
func (m *Metrics) WSDropped(msgType string) {
	if m == nil {
		return
	}
	m.wsDropped.WithLabelValues(msgType).Inc()
}

// Recorder counts replayed hours and forwards every event to next.
type Recorder struct {
	m    *Metrics
	next simulator.Callback
}

// WrapCallback returns a simulator.Callback that records hours before
// forwarding to next.
func (m *Metrics) WrapCallback(next simulator.Callback) *Recorder {
	return &Recorder{m: m, next: next}
}

func (r *Recorder) OnState(s simulator.State) {
	r.next.OnState(s)
}

func (r *Recorder) OnHour(h simulator.HourUpdate) {
	if r.m != nil {
		r.m.simulatedHours.WithLabelValues(string(h.Result.Mode)).Inc()
	}
	r.next.OnHour(h)
}

func (r *Recorder) OnSummary(s simulator.Summary) {
	r.next.OnSummary(s)
}
