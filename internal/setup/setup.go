// Package setup prepares a machine and project for building: it verifies the
// container runtime, provisions the TeX image and creates the conventional
// directories.
package setup

import (
	"context"
	"io"
	"log/slog"
	"strings"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/layout"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// OptionalTools are reported but never required.
var OptionalTools = []string{"act", "uv", "latexmk"}

// Options configures a setup run.
type Options struct {
	Root   string
	Image  string
	NoPull bool
}

// Setup runs the provisioning steps, reporting progress through a printer.
type Setup struct {
	runner  runner.Runner
	printer *ui.Printer
	prompt  *prompt.Prompter
	pullOut io.Writer
}

// New returns a Setup. Pull progress is streamed to the printer's writer.
func New(r runner.Runner, p *ui.Printer, pr *prompt.Prompter) *Setup {
	return &Setup{runner: r, printer: p, prompt: pr, pullOut: p.Writer()}
}

// Run executes every step in order. Missing Docker, a stopped daemon or a
// failed pull end the run; optional tools are informational.
func (s *Setup) Run(ctx context.Context, opts Options) error {
	docker := toolchain.NewDocker(s.runner, opts.Root, opts.Image)

	s.printer.Heading("Checking Docker")
	version, err := docker.Version(ctx)
	if err != nil {
		s.printer.Failure("Docker is not installed")
		s.printer.Indented(installHints)
		return err
	}
	s.printer.Success("%s", version)

	if err := docker.DaemonRunning(ctx); err != nil {
		s.printer.Failure("Docker daemon is not running")
		return err
	}
	s.printer.Success("Docker daemon is running")

	if err := s.ensureImage(ctx, docker, opts); err != nil {
		return err
	}

	s.printer.Heading("Optional tools")
	for _, tool := range OptionalTools {
		if p, lookErr := s.runner.LookPath(tool); lookErr == nil {
			s.printer.Success("%s found at %s", tool, p)
		} else {
			s.printer.Info("%s not found (optional)", tool)
		}
	}

	s.printer.Heading("Project directories")
	created, err := layout.Ensure(opts.Root)
	if err != nil {
		s.printer.Failure("Could not create directories: %v", err)
		return tberrors.FileSystemError("create project directories", err)
	}
	if len(created) == 0 {
		s.printer.Success("All directories present")
	}
	for _, rel := range created {
		s.printer.Success("Created %s/", rel)
	}

	s.printer.Plain("")
	s.printer.Success("Setup complete. Run `texbuilder build` to compile the document.")
	return nil
}

func (s *Setup) ensureImage(ctx context.Context, docker *toolchain.Docker, opts Options) error {
	s.printer.Heading("Checking image %s", docker.Image())
	present, err := docker.ImagePresent(ctx)
	if err != nil {
		s.printer.Failure("Could not query local images")
		return err
	}
	if present {
		s.printer.Success("Image is available locally")
		return nil
	}

	if opts.NoPull {
		s.printer.Warn("Image not present; skipping pull (--no-pull)")
		return nil
	}
	if !s.prompt.Confirm("Image "+docker.Image()+" is not present. Pull it now (several GB)?", true) {
		s.printer.Warn("Image not pulled; the first build will pull it")
		return nil
	}

	slog.Info("Pulling image", logfields.Image(docker.Image()))
	if err := docker.Pull(ctx, s.pullOut); err != nil {
		s.printer.Failure("Pulling %s failed", docker.Image())
		return err
	}
	s.printer.Success("Pulled %s", docker.Image())
	return nil
}

var installHints = strings.TrimSpace(`
Install Docker:
  macOS:   https://docs.docker.com/desktop/install/mac-install/
  Windows: https://docs.docker.com/desktop/install/windows-install/
  Linux:   https://docs.docker.com/engine/install/
`)
