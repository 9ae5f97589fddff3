package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiaot623/agentflow/internal/domain"
)

const metricsNamespace = "agentflow"

// Metrics exposes Prometheus collectors for run activity. A nil *Metrics
// records nothing.
type Metrics struct {
	runsStarted      prometheus.Counter
	runsFinished     *prometheus.CounterVec
	runsActive       prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
	eventsDispatched *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
}

// MustNewMetrics constructs and registers the collectors. Registration
// errors panic, so tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "runs",
			Name:      "started_total",
			Help:      "Total number of runs started.",
		}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "runs",
			Name:      "finished_total",
			Help:      "Total number of runs that reached a terminal status.",
		}, []string{"status"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "runs",
			Name:      "active",
			Help:      "Number of runs currently executing.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration spent in each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "stream",
			Name:      "events_dispatched_total",
			Help:      "Events delivered to run channels, by type.",
		}, []string{"type"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
	}
	reg.MustRegister(m.runsStarted, m.runsFinished, m.runsActive, m.stageDuration, m.eventsDispatched, m.toolCalls)
	return m
}

// StageFinished records a stage duration. It satisfies pipeline.Observer.
func (m *Metrics) StageFinished(stage string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(seconds)
}

// ToolCalled records a tool call outcome. It satisfies tools.CallObserver.
func (m *Metrics) ToolCalled(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.runsStarted.Inc()
	m.runsActive.Inc()
}

func (m *Metrics) runFinished(status domain.RunStatus) {
	if m == nil {
		return
	}
	m.runsActive.Dec()
	m.runsFinished.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) eventDispatched(t domain.EventType) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(string(t)).Inc()
}
