package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/texbuilder/internal/events"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
)

// Filter decides which filesystem events request a rebuild.
type Filter struct {
	Extensions []string
	// Ignore holds absolute directories whose contents never trigger rebuilds.
	Ignore []string
}

// Relevant reports whether a change to path should trigger a rebuild.
func (f Filter) Relevant(path string) bool {
	if shouldIgnoreEvent(path) || f.ignored(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (f Filter) ignored(path string) bool {
	for _, dir := range f.Ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent returns true for hidden, editor swap and backup files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".bak") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "4913" // vim write probe
}

// Watcher turns fsnotify events under a set of directories into
// RebuildRequested events on a bus.
type Watcher struct {
	fs       *fsnotify.Watcher
	bus      *events.Bus
	filter   Filter
	recorder metrics.Recorder
	dirs     []string
}

// NewWatcher watches every existing directory in dirs recursively. Missing
// directories are skipped; at least one must exist.
func NewWatcher(bus *events.Bus, dirs []string, filter Filter, recorder metrics.Recorder) (*Watcher, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{fs: fw, bus: bus, filter: filter, recorder: recorder}
	for _, dir := range dirs {
		fi, statErr := os.Stat(dir)
		if statErr != nil || !fi.IsDir() {
			slog.Debug("Skipping missing watch directory", logfields.Path(dir))
			continue
		}
		w.addDirsRecursive(dir)
		w.dirs = append(w.dirs, dir)
	}
	if len(w.dirs) == 0 {
		_ = fw.Close()
		return nil, fmt.Errorf("none of the watch directories exist: %s", strings.Join(dirs, ", "))
	}
	return w, nil
}

// Dirs returns the root directories being watched.
func (w *Watcher) Dirs() []string { return w.dirs }

// Run forwards relevant events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handleFileEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if !shouldIgnoreEvent(ev.Name) && !w.filter.ignored(ev.Name) {
				w.addDirsRecursive(ev.Name)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.filter.Relevant(ev.Name) {
		return
	}

	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.recorder.IncWatchEvents(1)
	if err := w.bus.Publish(ctx, events.RebuildRequested{
		Path:        ev.Name,
		Op:          ev.Op.String(),
		RequestedAt: time.Now(),
	}); err != nil {
		slog.Debug("Dropping change event", logfields.Error(err))
	}
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (shouldIgnoreEvent(path) || w.filter.ignored(path)) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("watch add failed", slog.String("dir", path), logfields.Error(err))
		}
		return nil
	})
}
