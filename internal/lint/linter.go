package lint

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// Linter runs lint tools through a toolchain.
type Linter struct {
	cfg      Config
	tc       toolchain.Toolchain
	recorder metrics.Recorder
}

// NewLinter creates a linter using tc.
func NewLinter(cfg Config, tc toolchain.Toolchain) *Linter {
	return &Linter{cfg: cfg, tc: tc, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (l *Linter) WithRecorder(r metrics.Recorder) *Linter {
	if r != nil {
		l.recorder = r
	}
	return l
}

// Targets resolves the files to lint: file when set, otherwise every .tex
// file under srcDir, recursively and sorted. Returned paths are relative to
// the toolchain working directory.
func (l *Linter) Targets(srcDir, file string) ([]string, error) {
	workdir := l.tc.Workdir()
	if file != "" {
		abs := absUnder(workdir, file)
		fi, err := os.Stat(abs)
		if err != nil || fi.IsDir() {
			return nil, tberrors.PathNotFound("file", file)
		}
		rel, err := l.tc.Path(abs)
		if err != nil {
			return nil, err
		}
		return []string{rel}, nil
	}

	root := absUnder(workdir, srcDir)
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil, tberrors.PathNotFound("source directory", srcDir)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".tex") {
			return nil
		}
		rel, relErr := l.tc.Path(path)
		if relErr != nil {
			return relErr
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Lint runs the configured tools over files. A tool that cannot be started
// marks the file as skipped; the remaining files are still linted.
func (l *Linter) Lint(ctx context.Context, files []string) *Result {
	res := &Result{}
	for _, f := range files {
		fr := FileResult{File: f}

		issues, err := l.run(ctx, ToolChktex, f, "-v"+strconv.Itoa(l.cfg.ChktexVerbosity), "-q", f)
		if err != nil {
			fr.Err = err
			res.Files = append(res.Files, fr)
			continue
		}
		fr.Chktex = len(issues)
		res.Issues = append(res.Issues, issues...)

		if l.cfg.Lacheck {
			issues, err = l.run(ctx, ToolLacheck, f, f)
			if err != nil {
				fr.Err = err
			} else {
				fr.Lacheck = len(issues)
				res.Issues = append(res.Issues, issues...)
			}
		}
		res.Files = append(res.Files, fr)
	}
	return res
}

func (l *Linter) run(ctx context.Context, tool, file string, args ...string) ([]Issue, error) {
	cmd := l.tc.Command(tool, args...)
	out, err := l.tc.Runner().Run(ctx, cmd)
	if err != nil {
		l.recorder.IncToolInvocation(tool, metrics.ResultNotFound)
		slog.Warn("Lint tool could not be run", logfields.Tool(tool), logfields.File(file), logfields.Error(err))
		return nil, tberrors.ToolStartFailed(tool, err)
	}
	// chktex exits non-zero when it finds warnings; the output is what matters.
	result := metrics.ResultSuccess
	if !out.Success() {
		result = metrics.ResultFailed
	}
	l.recorder.IncToolInvocation(tool, result)
	issues := parseOutput(tool, file, out.Stdout)
	slog.Debug("Linted file", logfields.Tool(tool), logfields.File(file), logfields.Count(len(issues)))
	return issues, nil
}

func absUnder(workdir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workdir, p)
}
