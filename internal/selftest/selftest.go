// Package selftest verifies that the TeX toolchain can build documents.
package selftest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/texbuilder/internal/build"
	"git.home.luguber.info/inful/texbuilder/internal/config"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/layout"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// Check is the outcome of one verification step.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Options configures a self-test run.
type Options struct {
	TestDocument string
	Output       string
	SkipCompile  bool
	Local        bool
	Verbose      bool
	Stdout       io.Writer
	Stderr       io.Writer
}

// Suite runs the checks against one project.
type Suite struct {
	cfg     config.ToolchainConfig
	runner  runner.Runner
	workdir string
}

// NewSuite returns a Suite for the project at workdir.
func NewSuite(cfg config.ToolchainConfig, r runner.Runner, workdir string) *Suite {
	return &Suite{cfg: cfg, runner: r, workdir: workdir}
}

// Run probes the toolchain and then runs every check in order. The error is
// non-nil only when the toolchain itself is unusable; failed checks are
// reported in the returned slice.
func (s *Suite) Run(ctx context.Context, opts Options) ([]Check, error) {
	tc, err := toolchain.New(s.cfg, s.runner, s.workdir, opts.Local)
	if err != nil {
		return nil, err
	}
	if err := tc.Probe(ctx); err != nil {
		return nil, err
	}

	checks := []Check{
		s.checkLayout(),
		s.checkVersion(ctx, tc, "Biber available", "biber", "--version"),
		s.checkVersion(ctx, tc, "Pygments available", "python3", "-c", "import pygments; print(pygments.__version__)"),
	}

	docExists := s.testDocumentExists(opts.TestDocument)
	if opts.SkipCompile {
		checks = append(checks, Check{Name: "Test document compiles", Passed: true, Detail: "skipped"})
	} else {
		checks = append(checks, s.checkCompile(ctx, opts, docExists))
	}
	checks = append(checks, s.checkChktex(ctx, tc, opts.TestDocument, docExists))

	for _, c := range checks {
		slog.Debug("Self-test check", slog.String("check", c.Name), slog.Bool("passed", c.Passed), slog.String("detail", c.Detail))
	}
	return checks, nil
}

// Failed counts failed checks.
func Failed(checks []Check) int {
	n := 0
	for _, c := range checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// Err returns a check error when any check failed.
func Err(checks []Check) error {
	if n := Failed(checks); n > 0 {
		return tberrors.ChecksFailed(n)
	}
	return nil
}

func (s *Suite) checkLayout() Check {
	c := Check{Name: "Project layout"}
	rep, err := layout.Check(s.workdir)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	missing := rep.MissingRequired()
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Rel)
		}
		c.Detail = "missing " + strings.Join(names, ", ")
		return c
	}
	c.Passed = true
	if opt := rep.MissingOptional(); len(opt) > 0 {
		c.Detail = fmt.Sprintf("ok (%d optional locations absent)", len(opt))
	} else {
		c.Detail = "ok"
	}
	return c
}

func (s *Suite) checkVersion(ctx context.Context, tc toolchain.Toolchain, name, tool string, args ...string) Check {
	c := Check{Name: name}
	res, err := tc.Runner().Run(ctx, tc.Command(tool, args...))
	switch {
	case err != nil:
		c.Detail = tool + " could not be run"
	case !res.Success():
		c.Detail = fmt.Sprintf("%s exited with %d", tool, res.ExitCode)
		if line := res.FirstLine(); line != "" {
			c.Detail += ": " + line
		}
	default:
		c.Passed = true
		c.Detail = res.FirstLine()
	}
	return c
}

func (s *Suite) testDocumentExists(doc string) bool {
	if doc == "" {
		return false
	}
	p := doc
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.workdir, p)
	}
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func (s *Suite) checkCompile(ctx context.Context, opts Options, docExists bool) Check {
	c := Check{Name: "Test document compiles"}
	if !docExists {
		c.Detail = "test document not found: " + opts.TestDocument
		return c
	}
	svc := build.NewService(s.cfg, s.runner, s.workdir).WithoutProbe()
	res, err := svc.Run(ctx, build.Request{
		Source:  opts.TestDocument,
		Output:  opts.Output,
		Local:   opts.Local,
		Verbose: opts.Verbose,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
	})
	if err != nil {
		slog.Debug("Test document build failed", logfields.Error(err))
		c.Detail = "build failed"
		if res != nil && len(res.Errors) > 0 {
			c.Detail += ": " + res.Errors[len(res.Errors)-1]
		}
		return c
	}
	if res.PDFPath == "" {
		c.Detail = "no PDF produced"
		return c
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("%s (%s)", filepath.Base(res.PDFPath), res.HumanPDFSize())
	return c
}

func (s *Suite) checkChktex(ctx context.Context, tc toolchain.Toolchain, doc string, docExists bool) Check {
	c := Check{Name: "chktex on test document", Passed: true}
	if !docExists {
		c.Detail = "skipped (no test document)"
		return c
	}
	rel, err := tc.Path(doc)
	if err != nil {
		c.Detail = "skipped: " + err.Error()
		return c
	}
	res, err := tc.Runner().Run(ctx, tc.Command("chktex", "-q", rel))
	if err != nil {
		c.Detail = "chktex could not be run"
		return c
	}
	n := 0
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	c.Detail = fmt.Sprintf("%d warning(s)", n)
	return c
}
