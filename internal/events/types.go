package events

import "time"

// RebuildRequested is published by the file watcher for every relevant change.
type RebuildRequested struct {
	Path        string
	Op          string
	RequestedAt time.Time
}

// RebuildNow is emitted by the Debouncer once it decides a build should start.
type RebuildNow struct {
	TriggeredAt  time.Time
	RequestCount int
	LastPath     string
	FirstRequest time.Time
	LastRequest  time.Time
	Cause        string // "quiet", "max_delay" or "after_running"
}
