package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Src          string `short:"s" help:"Main .tex file (default from config: src/main.tex)"`
	Output       string `short:"o" help:"Output directory (default from config: build)"`
	Draft        bool   `short:"d" help:"Single fast pass without bibliography processing"`
	ValidateOnly bool   `name:"validate-only" help:"Check the document compiles without writing a PDF"`
	Local        bool   `short:"l" help:"Use the local TeX installation instead of Docker"`
	Clean        bool   `short:"c" help:"Remove auxiliary files before building"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wd, err := g.workdir(cfg.Toolchain.Workdir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := build.Request{
		Source:       pick(b.Src, cfg.Document.Source),
		Output:       pick(b.Output, cfg.Document.Output),
		Draft:        b.Draft,
		ValidateOnly: b.ValidateOnly,
		Local:        b.Local,
		CleanFirst:   b.Clean,
		Verbose:      root.Verbose,
		Stdout:       g.stdout(),
		Stderr:       g.stderr(),
	}

	p := g.printer()
	p.Heading("Building %s (%s)", req.Source, req.Mode())
	res, err := build.NewService(cfg.Toolchain, g.runner(), wd).Run(ctx, req)
	reportBuild(p, wd, res, err)
	return err
}

// reportBuild prints the outcome of one build. It is shared with watch.
func reportBuild(p *ui.Printer, wd string, res *build.Result, err error) {
	if res == nil {
		if err != nil {
			p.Failure("Build did not run: %v", err)
		}
		return
	}

	// A successful run can still log lines that look like errors; they are
	// only reported when latexmk failed.
	if !res.Success() {
		for _, e := range res.Errors {
			p.Failure("%s", e)
		}
		if res.ErrorCount > len(res.Errors) {
			p.Info("%d more errors in %s", res.ErrorCount-len(res.Errors), relTo(wd, res.LogPath))
		}
	}
	if res.UndefinedRefs > 0 {
		p.Warn("%d undefined references or citations", res.UndefinedRefs)
	}
	if res.Warnings > 0 || res.BoxWarnings > 0 {
		p.Info("%d warnings, %d overfull/underfull boxes", res.Warnings, res.BoxWarnings)
	}

	if !res.Success() {
		p.Failure("Build failed after %s (exit %d); see %s", res.Duration.Round(time.Millisecond), res.ExitCode, relTo(wd, res.LogPath))
		return
	}
	if res.PDFPath == "" {
		p.Success("Document is valid (%s)", res.Duration.Round(time.Millisecond))
		return
	}
	p.Success("Built %s (%s) in %s", relTo(wd, res.PDFPath), res.HumanPDFSize(), res.Duration.Round(time.Millisecond))
}

func relTo(wd, path string) string {
	if path == "" {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return path
}
