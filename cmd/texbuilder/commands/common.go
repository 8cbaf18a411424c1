// Package commands implements the texbuilder subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// Global carries process-wide dependencies into every command. Tests replace
// the runner and streams.
type Global struct {
	Runner runner.Runner
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Workdir is the project root; empty means the current directory.
	Workdir string
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `help:"Configuration file path" default:"texbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Setup SetupCmd `cmd:"" help:"Check Docker, pull the TeX image and create project directories"`
	Build BuildCmd `cmd:"" help:"Compile the document to PDF"`
	Clean CleanCmd `cmd:"" help:"Remove generated LaTeX files"`
	Test  TestCmd  `cmd:"" help:"Verify the toolchain with a test document"`
	Lint  LintCmd  `cmd:"" help:"Check LaTeX sources with chktex and lacheck"`
	Watch WatchCmd `cmd:"" help:"Rebuild the document whenever sources change"`
	Init  InitCmd  `cmd:"" help:"Customize the template for a new document"`
}

// AfterApply runs after flag parsing; setup logging once.
// The logging section of the configuration file is honoured when readable;
// errors surface later when the command loads the configuration itself.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg, err := config.Load(c.Config); err == nil {
		level = config.NormalizeLogLevel(cfg.Logging.Level).SlogLevel()
		format = config.NormalizeLogFormat(cfg.Logging.Format)
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(newHandler(os.Stderr, format, level)))
	return nil
}

func newHandler(w io.Writer, format config.LogFormat, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// loadConfig reads the project configuration named by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if _, ok := tberrors.As(err); ok {
			return nil, err
		}
		return nil, tberrors.ConfigInvalid(c.Config, err)
	}
	return cfg, nil
}

// workdir resolves the project root. configured is toolchain.workdir from
// the configuration file; a relative value is taken from the current
// directory (or the injected Workdir).
func (g *Global) workdir(configured string) (string, error) {
	dir := g.Workdir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", tberrors.FileSystemError("determine working directory", err)
		}
		dir = wd
	}
	if configured != "" {
		if filepath.IsAbs(configured) {
			dir = configured
		} else {
			dir = filepath.Join(dir, configured)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", tberrors.FileSystemError("resolve working directory", err)
	}
	if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
		return "", tberrors.PathNotFound("toolchain.workdir", abs)
	}
	return abs, nil
}

func (g *Global) runner() runner.Runner {
	if g.Runner == nil {
		return runner.NewExecRunner()
	}
	return g.Runner
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) stdin() io.Reader {
	if g.Stdin == nil {
		return os.Stdin
	}
	return g.Stdin
}

func (g *Global) printer() *ui.Printer {
	return ui.New(g.stdout())
}

// pick returns flag when set, otherwise fallback.
func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
