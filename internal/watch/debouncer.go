package watch

import (
	"context"
	"sync"
	"time"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/events"
)

// Debounce causes reported on RebuildNow.
const (
	CauseQuiet        = "quiet"
	CauseMaxDelay     = "max_delay"
	CauseAfterRunning = "after_running"
)

type DebouncerConfig struct {
	QuietWindow time.Duration
	MaxDelay    time.Duration

	// CheckBuildRunning reports whether a build is currently running.
	// While true the debouncer withholds RebuildNow and instead schedules
	// exactly one follow-up after the running build finishes.
	CheckBuildRunning func() bool

	// PollInterval controls how often build completion is polled once a
	// follow-up is pending.
	PollInterval time.Duration
}

// Debouncer coalesces bursts of RebuildRequested events into a single RebuildNow.
//
// A rebuild fires after QuietWindow without new requests, or after MaxDelay of
// continuous activity. It is safe to run as a single goroutine.
type Debouncer struct {
	bus *events.Bus
	cfg DebouncerConfig

	mu        sync.Mutex
	readyOnce sync.Once
	ready     chan struct{}

	pending         bool
	pendingAfterRun bool
	firstRequestAt  time.Time
	lastRequestAt   time.Time
	lastPath        string
	requestCount    int
	pollingAfterRun bool
}

func NewDebouncer(bus *events.Bus, cfg DebouncerConfig) (*Debouncer, error) {
	if bus == nil {
		return nil, tberrors.ValidationFailed("bus", "is required")
	}
	if cfg.QuietWindow <= 0 {
		return nil, tberrors.ValidationFailed("debounce", "must be > 0")
	}
	if cfg.MaxDelay <= 0 {
		return nil, tberrors.ValidationFailed("max_delay", "must be > 0")
	}
	if cfg.CheckBuildRunning == nil {
		cfg.CheckBuildRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return &Debouncer{bus: bus, cfg: cfg, ready: make(chan struct{})}, nil
}

// Ready is closed once Run has subscribed to RebuildRequested.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

func (d *Debouncer) Run(ctx context.Context) error {
	if ctx == nil {
		return tberrors.ValidationFailed("context", "must not be nil")
	}

	reqCh, unsubscribe := events.Subscribe[events.RebuildRequested](d.bus, 64)
	defer unsubscribe()

	d.readyOnce.Do(func() { close(d.ready) })

	quietTimer := stoppedTimer()
	maxTimer := stoppedTimer()
	pollTimer := stoppedTimer()

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
		pollC  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-reqCh:
			if !ok {
				return nil
			}
			d.onRequest(req)

			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C

			if d.shouldStartMaxTimer() {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			if d.tryEmit(ctx, CauseQuiet) {
				quietC = nil
				maxC = nil
			}

		case <-maxC:
			if d.tryEmit(ctx, CauseMaxDelay) {
				quietC = nil
				maxC = nil
			}

		case <-pollC:
			if d.tryEmitAfterRunning(ctx) {
				pollC = nil
				quietC = nil
				maxC = nil
				continue
			}
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}

		if d.shouldPollAfterRun() && pollC == nil {
			quietC = nil
			maxC = nil
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}

func (d *Debouncer) onRequest(req events.RebuildRequested) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := req.RequestedAt
	if now.IsZero() {
		now = time.Now()
	}

	if !d.pending {
		d.pending = true
		d.firstRequestAt = now
		d.requestCount = 0
	}

	d.lastRequestAt = now
	d.lastPath = req.Path
	d.requestCount++
}

func (d *Debouncer) shouldStartMaxTimer() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending && d.requestCount == 1
}

func (d *Debouncer) shouldPollAfterRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun && !d.pollingAfterRun
}

func (d *Debouncer) tryEmit(ctx context.Context, cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}

	if d.cfg.CheckBuildRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}

	evt := events.RebuildNow{
		TriggeredAt:  time.Now(),
		RequestCount: d.requestCount,
		LastPath:     d.lastPath,
		FirstRequest: d.firstRequestAt,
		LastRequest:  d.lastRequestAt,
		Cause:        cause,
	}
	d.pending = false
	d.pendingAfterRun = false
	d.pollingAfterRun = false
	d.mu.Unlock()

	_ = d.bus.Publish(ctx, evt)
	return true
}

func (d *Debouncer) tryEmitAfterRunning(ctx context.Context) bool {
	d.mu.Lock()
	if !d.pendingAfterRun {
		d.mu.Unlock()
		return true
	}
	d.pollingAfterRun = true
	d.mu.Unlock()

	if d.cfg.CheckBuildRunning() {
		return false
	}

	// Build finished; emit exactly one follow-up.
	return d.tryEmit(ctx, CauseAfterRunning)
}
