package metrics

import "time"

// ResultLabel enumerates tool invocation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultNotFound ResultLabel = "not_found"
)

// BuildOutcomeLabel is the final status of one document build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
	BuildOutcomeInvalid BuildOutcomeLabel = "invalid"
)

// Recorder defines observability hooks for builds, tool runs and the watch loop.
type Recorder interface {
	ObserveBuildDuration(mode string, d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncToolInvocation(tool string, result ResultLabel)
	IncWatchEvents(n int)
	IncRebuilds(cause string) // cause: initial|quiet|max_delay|after_running
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) IncToolInvocation(string, ResultLabel)      {}
func (NoopRecorder) IncWatchEvents(int)                         {}
func (NoopRecorder) IncRebuilds(string)                         {}
