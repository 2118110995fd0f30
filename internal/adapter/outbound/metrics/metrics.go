// Package metrics exposes diagnosis and HTTP metrics in Prometheus format.
//
// All metrics are prefixed with "edudiag_":
//   - edudiag_diagnoses_total{problem_type,cause,fallback}
//   - edudiag_diagnosis_errors_total
//   - edudiag_rules_fired
//   - edudiag_diagnosis_duration_seconds
//   - edudiag_history_appends_total{result}
//   - edudiag_escalations_total{result}
//   - edudiag_http_requests_total{method,route,status}
//   - edudiag_http_request_duration_seconds{method,route}
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

const namespace = "edudiag"

// Metrics implements outbound.Recorder on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	diagnoses      *prometheus.CounterVec
	errors         prometheus.Counter
	rulesFired     prometheus.Histogram
	duration       prometheus.Histogram
	historyAppends *prometheus.CounterVec
	escalations    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var _ outbound.Recorder = (*Metrics)(nil)

// New creates Metrics registered on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		diagnoses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnoses_total",
			Help:      "Best diagnoses derived, by problem type and cause.",
		}, []string{"problem_type", "cause", "fallback"}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnosis_errors_total",
			Help:      "Engine runs that failed or derived no diagnosis.",
		}),
		rulesFired: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rules_fired",
			Help:      "Rule firings per engine run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diagnosis_duration_seconds",
			Help:      "Engine run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		historyAppends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_appends_total",
			Help:      "History appends by result.",
		}, []string{"result"}),
		escalations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Escalation notifications by result.",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveRun(obs outbound.RunObservation) {
	m.duration.Observe(obs.Duration.Seconds())
	if obs.Err != nil {
		m.errors.Inc()
		return
	}
	m.rulesFired.Observe(float64(obs.RulesFired))
	m.diagnoses.WithLabelValues(obs.ProblemType, obs.Cause, strconv.FormatBool(obs.Fallback)).Inc()
}

func (m *Metrics) ObserveHistoryAppend(err error) {
	m.historyAppends.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveEscalation(err error) {
	m.escalations.WithLabelValues(result(err)).Inc()
}

// ObserveHTTP records one served request. route is the matched route pattern.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
