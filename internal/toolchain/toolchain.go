// Package toolchain decides where TeX tools run: directly on the host or
// inside a container image through the Docker CLI.
package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
)

// ProbeTimeout bounds the reachability checks run before any build.
const ProbeTimeout = 10 * time.Second

// Toolchain builds runner commands for TeX tools.
type Toolchain interface {
	Mode() config.ToolchainMode
	// Probe verifies the toolchain is usable without starting a build.
	Probe(ctx context.Context) error
	// Command wraps a tool invocation for this toolchain. Path arguments must
	// already be converted with Path.
	Command(tool string, args ...string) runner.Command
	// Path converts a project path into the form handed to tools.
	Path(p string) (string, error)
	Describe() string
	Workdir() string
	Runner() runner.Runner
}

// New returns the toolchain selected by cfg; local forces host execution.
func New(cfg config.ToolchainConfig, r runner.Runner, workdir string, local bool) (Toolchain, error) {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return nil, tberrors.FileSystemError("resolve workdir", err)
	}
	if local || cfg.Mode == config.ModeLocal {
		return &Local{runner: r, workdir: abs}, nil
	}
	return NewDocker(r, abs, cfg.Image), nil
}

// Rel rewrites path relative to workdir with forward slashes so it is valid
// on the host and inside the container mount. Paths outside workdir are rejected.
func Rel(workdir, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workdir, path)
	}
	rel, err := filepath.Rel(workdir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", tberrors.ValidationFailed("path", fmt.Sprintf("%s is outside the project directory %s", path, workdir))
	}
	return filepath.ToSlash(rel), nil
}

// Local runs tools on the host.
type Local struct {
	runner  runner.Runner
	workdir string
}

// NewLocal returns a host toolchain rooted at workdir.
func NewLocal(r runner.Runner, workdir string) *Local {
	return &Local{runner: r, workdir: workdir}
}

func (l *Local) Mode() config.ToolchainMode { return config.ModeLocal }
func (l *Local) Workdir() string            { return l.workdir }
func (l *Local) Runner() runner.Runner      { return l.runner }
func (l *Local) Describe() string           { return "local TeX installation" }

// Probe checks that latexmk is on PATH without spawning it.
func (l *Local) Probe(context.Context) error {
	if _, err := l.runner.LookPath("latexmk"); err != nil {
		return tberrors.DependencyMissing("latexmk",
			"Install a TeX distribution providing latexmk, or drop --local to build in Docker", err)
	}
	return nil
}

// Path returns p relative to the workdir when it lies inside it and as a
// cleaned absolute path otherwise; the host can reach both.
func (l *Local) Path(p string) (string, error) {
	if rel, err := Rel(l.workdir, p); err == nil {
		return rel, nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.workdir, p)
	}
	return filepath.Clean(p), nil
}

func (l *Local) Command(tool string, args ...string) runner.Command {
	return runner.Command{Name: tool, Args: args, Dir: l.workdir}
}
