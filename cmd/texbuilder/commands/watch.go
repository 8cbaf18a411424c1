package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
	"git.home.luguber.info/inful/texbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Src           string        `short:"s" help:"Source directory to watch (default: directory of the configured main document)"`
	Output        string        `short:"o" help:"Output directory (default from config: build)"`
	Main          string        `short:"m" help:"Main .tex file inside the source directory (default: main.tex)"`
	Debounce      time.Duration `help:"Quiet period before a rebuild (default from config: 1s)"`
	Local         bool          `short:"l" help:"Use the local TeX installation instead of Docker"`
	InitialBuild  bool          `name:"initial-build" negatable:"" default:"true" help:"Build once when watching starts"`
	MetricsListen string        `name:"metrics-listen" placeholder:"ADDR" help:"Serve Prometheus metrics on this address while watching"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wd, err := g.workdir(cfg.Toolchain.Workdir)
	if err != nil {
		return err
	}

	srcDir := pick(w.Src, filepath.Dir(filepath.FromSlash(cfg.Document.Source)))
	source := filepath.Join(srcDir, pick(w.Main, filepath.Base(cfg.Document.Source)))
	debounce := w.Debounce
	if debounce == 0 {
		debounce = cfg.Watch.Debounce
	}
	if debounce <= 0 {
		return tberrors.ValidationFailed("debounce", "must be > 0")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tc, err := toolchain.New(cfg.Toolchain, g.runner(), wd, w.Local)
	if err != nil {
		return err
	}
	if err := tc.Probe(ctx); err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsListen != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		srv := &http.Server{Addr: w.MetricsListen, Handler: metrics.HTTPHandler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("Serving metrics", slog.String("addr", w.MetricsListen))
	}

	p := g.printer()
	p.Heading("Watch mode")
	p.Info("Main file: %s", filepath.ToSlash(source))
	p.Info("Toolchain: %s", tc.Describe())
	p.Info("Debounce: %s", debounce)
	p.Info("Press Ctrl+C to stop")

	dirs := watchDirs(cfg.Watch.Dirs, filepath.Dir(filepath.FromSlash(cfg.Document.Source)), srcDir)
	builder := build.NewService(cfg.Toolchain, g.runner(), wd).WithRecorder(recorder).WithoutProbe()
	loop := watch.NewLoop(watch.Options{
		Root:         wd,
		Dirs:         dirs,
		Extensions:   cfg.Watch.Extensions,
		Debounce:     debounce,
		MaxDelay:     cfg.Watch.MaxDelay,
		InitialBuild: w.InitialBuild && cfg.Watch.InitialBuildEnabled(),
		Build: build.Request{
			Source:  source,
			Output:  pick(w.Output, cfg.Document.Output),
			Local:   w.Local,
			Verbose: root.Verbose,
			Stdout:  g.stdout(),
			Stderr:  g.stderr(),
		},
	}, builder, &watchReporter{printer: p, workdir: wd}).WithRecorder(recorder)

	err = loop.Run(ctx)
	if tberrors.IsCategory(err, tberrors.CategoryInterrupted) {
		p.Plain("")
		p.Info("Stopped after %d builds", loop.Builds())
	}
	return err
}

// watchDirs swaps the configured source directory for --src when given.
func watchDirs(configured []string, configuredSrc, src string) []string {
	out := make([]string, 0, len(configured)+1)
	replaced := false
	for _, d := range configured {
		if filepath.Clean(d) == filepath.Clean(configuredSrc) {
			d = src
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced {
		out = append([]string{src}, out...)
	}
	return out
}

type watchReporter struct {
	printer *ui.Printer
	workdir string
}

func (r *watchReporter) BuildStarted(cause string) {
	if cause == watch.CauseInitial {
		r.printer.Heading("Initial build")
		return
	}
	r.printer.Heading("Change detected, rebuilding (%s)", time.Now().Format(time.TimeOnly))
}

func (r *watchReporter) BuildFinished(res *build.Result, err error) {
	reportBuild(r.printer, r.workdir, res, err)
}
