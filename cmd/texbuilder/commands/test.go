package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/texbuilder/internal/selftest"
)

// TestCmd implements the 'test' command.
type TestCmd struct {
	TestDoc     string `short:"t" name:"test-doc" help:"Test document (default from config: tests/test_document.tex)"`
	Output      string `short:"o" help:"Output directory (default from config: build)"`
	SkipCompile bool   `short:"s" name:"skip-compile" help:"Skip compiling the test document"`
	Local       bool   `short:"l" help:"Use the local TeX installation instead of Docker"`
}

func (t *TestCmd) Run(g *Global, root *CLI) error {
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

	p := g.printer()
	p.Heading("Running toolchain self-test")
	checks, err := selftest.NewSuite(cfg.Toolchain, g.runner(), wd).Run(ctx, selftest.Options{
		TestDocument: pick(t.TestDoc, cfg.Test.Document),
		Output:       pick(t.Output, cfg.Document.Output),
		SkipCompile:  t.SkipCompile,
		Local:        t.Local,
		Verbose:      root.Verbose,
		Stdout:       g.stdout(),
		Stderr:       g.stderr(),
	})
	if err != nil {
		p.Failure("Toolchain unavailable: %v", err)
		return err
	}

	rows := make([][]string, 0, len(checks))
	for _, c := range checks {
		rows = append(rows, []string{c.Name, p.Mark(c.Passed), c.Detail})
	}
	p.Table([]string{"Check", "Status", "Detail"}, rows)

	if n := selftest.Failed(checks); n > 0 {
		p.Failure("%d of %d checks failed", n, len(checks))
	} else {
		p.Success("All %d checks passed", len(checks))
	}
	return selftest.Err(checks)
}
