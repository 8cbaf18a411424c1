package metrics

import (
	"testing"
	"time"
)

// Compile-time checks that both implementations satisfy Recorder.
var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration("local", time.Second)
	r.IncBuildOutcome(BuildOutcomeFailed)
	r.IncToolInvocation("biber", ResultNotFound)
	r.IncWatchEvents(10)
	r.IncRebuilds("initial")
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveBuildDuration("docker", time.Second)
	p.IncBuildOutcome(BuildOutcomeSuccess)
	p.IncToolInvocation("latexmk", ResultSuccess)
	p.IncWatchEvents(1)
	p.IncRebuilds("quiet")
}
