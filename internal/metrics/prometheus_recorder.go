package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "texbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration   *prom.HistogramVec
	buildOutcome    *prom.CounterVec
	toolInvocations *prom.CounterVec
	watchEvents     prom.Counter
	rebuilds        *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of latexmk document builds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}, []string{"mode"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		toolInvocations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "External tool invocations by tool and result",
		}, []string{"tool", "result"}),
		watchEvents: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Relevant filesystem change events seen by the watcher",
		}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_rebuilds_total",
			Help:      "Rebuilds triggered by the watch loop by debounce cause",
		}, []string{"cause"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.toolInvocations, pr.watchEvents, pr.rebuilds)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(mode string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncToolInvocation(tool string, result ResultLabel) {
	if p == nil || p.toolInvocations == nil {
		return
	}
	p.toolInvocations.WithLabelValues(tool, string(result)).Inc()
}

func (p *PrometheusRecorder) IncWatchEvents(n int) {
	if p == nil || p.watchEvents == nil || n <= 0 {
		return
	}
	p.watchEvents.Add(float64(n))
}

func (p *PrometheusRecorder) IncRebuilds(cause string) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(cause).Inc()
}
