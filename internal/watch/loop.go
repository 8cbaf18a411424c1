// Package watch rebuilds the document whenever its sources change.
//
// The file watcher publishes RebuildRequested events on an in-process bus, a
// Debouncer turns bursts of them into single RebuildNow events and a worker
// runs one build at a time. Builds always run to completion: new changes
// never cancel an in-flight build, they queue exactly one follow-up.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/events"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
)

// CauseInitial labels the build run when watching starts.
const CauseInitial = "initial"

// Options configures a watch loop.
type Options struct {
	Root         string
	Dirs         []string // relative to Root or absolute
	Extensions   []string
	Debounce     time.Duration
	MaxDelay     time.Duration
	InitialBuild bool

	// Build is the request issued for every rebuild.
	Build build.Request
}

// Reporter receives build outcomes for display.
type Reporter interface {
	BuildStarted(cause string)
	BuildFinished(res *build.Result, err error)
}

// Loop wires watcher, debouncer and build worker together.
type Loop struct {
	opts     Options
	builder  build.Service
	reporter Reporter
	recorder metrics.Recorder

	running atomic.Bool
	builds  atomic.Int64
}

// NewLoop creates a watch loop.
func NewLoop(opts Options, builder build.Service, reporter Reporter) *Loop {
	if opts.MaxDelay < opts.Debounce {
		opts.MaxDelay = 10 * opts.Debounce
	}
	return &Loop{opts: opts, builder: builder, reporter: reporter, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (l *Loop) WithRecorder(r metrics.Recorder) *Loop {
	if r != nil {
		l.recorder = r
	}
	return l
}

// Builds returns the number of builds started so far.
func (l *Loop) Builds() int64 { return l.builds.Load() }

// Run watches until ctx is canceled. The build in progress at that moment is
// allowed to finish. The returned error is an interrupted error on a normal
// shutdown.
func (l *Loop) Run(ctx context.Context) error {
	root, err := filepath.Abs(l.opts.Root)
	if err != nil {
		return tberrors.FileSystemError("resolve project root", err)
	}

	bus := events.NewBus()
	defer bus.Close()

	debouncer, err := NewDebouncer(bus, DebouncerConfig{
		QuietWindow:       l.opts.Debounce,
		MaxDelay:          l.opts.MaxDelay,
		CheckBuildRunning: l.running.Load,
	})
	if err != nil {
		return err
	}

	watcher, err := NewWatcher(bus, l.absDirs(root), Filter{
		Extensions: l.opts.Extensions,
		Ignore:     []string{l.absOutput(root)},
	}, l.recorder)
	if err != nil {
		return tberrors.ValidationFailed("watch.dirs", err.Error())
	}
	defer func() { _ = watcher.Close() }()

	nowCh, unsubscribe := events.Subscribe[events.RebuildNow](bus, 1)
	defer unsubscribe()

	// The pipeline outlives ctx so that shutdown can stop the watcher first:
	// no change event is published once the debouncer starts unsubscribing.
	pipeCtx, stopPipeline := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPipeline()

	var pipeline sync.WaitGroup
	pipeline.Add(2)
	go func() {
		defer pipeline.Done()
		_ = debouncer.Run(pipeCtx)
	}()
	go func() {
		defer pipeline.Done()
		l.worker(pipeCtx, nowCh)
	}()

	select {
	case <-debouncer.Ready():
	case <-ctx.Done():
	}
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		_ = watcher.Run(ctx)
	}()

	slog.Info("Watching for changes", slog.Any("dirs", watcher.Dirs()), slog.Duration("debounce", l.opts.Debounce))

	<-ctx.Done()
	slog.Info("Stopping watch; waiting for running build to finish")
	<-watcherDone
	stopPipeline()
	pipeline.Wait()
	return tberrors.Interrupted()
}

func (l *Loop) worker(ctx context.Context, nowCh <-chan events.RebuildNow) {
	if l.opts.InitialBuild {
		l.rebuild(ctx, CauseInitial)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-nowCh:
			if !ok || ctx.Err() != nil {
				return
			}
			slog.Debug("Rebuild triggered", logfields.Cause(evt.Cause), logfields.Count(evt.RequestCount), logfields.Path(evt.LastPath))
			l.rebuild(ctx, evt.Cause)
		}
	}
}

// rebuild runs one build detached from ctx cancellation so that a shutdown
// signal never kills a running latexmk.
func (l *Loop) rebuild(ctx context.Context, cause string) {
	l.running.Store(true)
	defer l.running.Store(false)

	l.builds.Add(1)
	l.recorder.IncRebuilds(cause)
	if l.reporter != nil {
		l.reporter.BuildStarted(cause)
	}
	res, err := l.builder.Run(context.WithoutCancel(ctx), l.opts.Build)
	if err != nil {
		slog.Debug("Rebuild failed", logfields.Error(err))
	}
	if l.reporter != nil {
		l.reporter.BuildFinished(res, err)
	}
}

func (l *Loop) absDirs(root string) []string {
	out := make([]string, 0, len(l.opts.Dirs))
	for _, d := range l.opts.Dirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(root, d)
		}
		out = append(out, filepath.Clean(d))
	}
	return out
}

func (l *Loop) absOutput(root string) string {
	out := l.opts.Build.Output
	if out == "" {
		out = "build"
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(root, out)
	}
	return filepath.Clean(out)
}
