package commands

import (
	"context"
	"fmt"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/lint"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Src     string `short:"s" default:"src" help:"Directory searched recursively for .tex files"`
	File    string `short:"f" help:"Lint a single file instead of the source directory"`
	Lacheck bool   `help:"Also run lacheck"`
	Strict  bool   `short:"S" help:"Exit non-zero when any warning is found"`
	Local   bool   `short:"l" help:"Use the local TeX installation instead of Docker"`
	Format  string `default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (l *LintCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wd, err := g.workdir(cfg.Toolchain.Workdir)
	if err != nil {
		return err
	}

	tc, err := toolchain.New(cfg.Toolchain, g.runner(), wd, l.Local)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := tc.Probe(ctx); err != nil {
		return err
	}

	linter := lint.NewLinter(lint.Config{
		ChktexVerbosity: cfg.Lint.Verbosity(),
		Lacheck:         l.Lacheck || cfg.Lint.Lacheck,
	}, tc)
	files, err := linter.Targets(l.Src, l.File)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		g.printer().Warn("No .tex files found in %s", l.Src)
		return nil
	}

	result := linter.Lint(ctx, files)

	useColor := l.Format == "text" && ui.ColorEnabled(g.stdout())
	formatter := lint.NewFormatter(l.Format, useColor, l.Lacheck || cfg.Lint.Lacheck, root.Verbose)
	if err := formatter.Format(g.stdout(), result); err != nil {
		return tberrors.InternalError(fmt.Sprintf("formatting %s output", l.Format), err)
	}

	if l.Strict && result.HasWarnings() {
		return tberrors.StrictLintFailed(result.WarningCount())
	}
	return nil
}
