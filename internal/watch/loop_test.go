package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
)

// countingBuilder records builds and can block them until released.
type countingBuilder struct {
	calls    atomic.Int32
	gate     chan struct{}
	mu       sync.Mutex
	ctxErrs  []error
	inFlight atomic.Bool
}

func (b *countingBuilder) Run(ctx context.Context, _ build.Request) (*build.Result, error) {
	b.inFlight.Store(true)
	defer b.inFlight.Store(false)
	b.calls.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	b.ctxErrs = append(b.ctxErrs, ctx.Err())
	b.mu.Unlock()
	return &build.Result{}, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	causes []string
}

func (r *recordingReporter) BuildStarted(cause string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.causes = append(r.causes, cause)
}

func (r *recordingReporter) BuildFinished(*build.Result, error) {}

func (r *recordingReporter) Causes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.causes...)
}

func watchProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"src/chapters", "build"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o750))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.tex"), []byte("a"), 0o600))
	return root
}

func testOptions(root string, initial bool) Options {
	return Options{
		Root:         root,
		Dirs:         []string{"src", "styles", "assets"},
		Extensions:   []string{".tex", ".bib", ".sty", ".cls"},
		Debounce:     100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		InitialBuild: initial,
		Build:        build.Request{Source: "src/main.tex", Output: "build"},
	}
}

func startLoop(t *testing.T, l *Loop) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	// Give the watcher time to register its directories.
	time.Sleep(150 * time.Millisecond)
	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			return errors.New("watch loop did not stop")
		}
	}
}

func TestLoop_BurstOfChangesTriggersOneRebuild(t *testing.T) {
	root := watchProject(t)
	builder := &countingBuilder{}
	reporter := &recordingReporter{}
	stop := startLoop(t, NewLoop(testOptions(root, true), builder, reporter))

	require.Eventually(t, func() bool { return builder.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	for i := range 5 {
		name := filepath.Join(root, "src", "chapters", fmt.Sprintf("%02d.tex", i))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	require.Eventually(t, func() bool { return builder.calls.Load() == 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(2), builder.calls.Load())
	assert.Equal(t, CauseInitial, reporter.Causes()[0])

	err := stop()
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryInterrupted))
}

func TestLoop_IgnoresOutputAndIrrelevantFiles(t *testing.T) {
	root := watchProject(t)
	builder := &countingBuilder{}
	opts := testOptions(root, false)
	opts.Dirs = []string{"."}
	stop := startLoop(t, NewLoop(opts, builder, nil))

	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "main.tex"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "main.aux"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", ".main.tex.swp"), []byte("x"), 0o600))

	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, builder.calls.Load())
	_ = stop()
}

func TestLoop_NewSubdirectoriesAreWatched(t *testing.T) {
	root := watchProject(t)
	builder := &countingBuilder{}
	stop := startLoop(t, NewLoop(testOptions(root, false), builder, nil))

	sub := filepath.Join(root, "src", "appendix")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.tex"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return builder.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	_ = stop()
}

func TestLoop_ShutdownLetsRunningBuildFinish(t *testing.T) {
	root := watchProject(t)
	builder := &countingBuilder{gate: make(chan struct{})}
	stop := startLoop(t, NewLoop(testOptions(root, true), builder, nil))

	require.Eventually(t, builder.inFlight.Load, 2*time.Second, 10*time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- stop() }()

	select {
	case <-stopped:
		t.Fatal("loop stopped while a build was running")
	case <-time.After(150 * time.Millisecond):
	}

	close(builder.gate)
	err := <-stopped
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryInterrupted))

	builder.mu.Lock()
	defer builder.mu.Unlock()
	require.Len(t, builder.ctxErrs, 1)
	assert.NoError(t, builder.ctxErrs[0], "build context must not be canceled by shutdown")
}

func TestLoop_StopsCleanlyWhileFilesChange(t *testing.T) {
	root := watchProject(t)
	stop := startLoop(t, NewLoop(testOptions(root, false), &countingBuilder{}, nil))

	writing := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-writing:
				return
			default:
			}
			_ = os.WriteFile(filepath.Join(root, "src", fmt.Sprintf("w%d.tex", i%20)), []byte("x"), 0o600)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	err := stop()
	close(writing)
	<-done
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryInterrupted))
}

func TestLoop_NoWatchableDirectories(t *testing.T) {
	opts := testOptions(t.TempDir(), false)
	err := NewLoop(opts, &countingBuilder{}, nil).Run(context.Background())
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryValidation))
}
