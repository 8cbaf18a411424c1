package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/latexmk"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/metrics"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
	"git.home.luguber.info/inful/texbuilder/internal/toolchain"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	toolchainCfg config.ToolchainConfig
	runner       runner.Runner
	workdir      string
	recorder     metrics.Recorder
	newID        func() string
	skipProbe    bool
}

// NewService creates a DefaultService running tools through r from workdir.
func NewService(cfg config.ToolchainConfig, r runner.Runner, workdir string) *DefaultService {
	return &DefaultService{
		toolchainCfg: cfg,
		runner:       r,
		workdir:      workdir,
		recorder:     metrics.NoopRecorder{},
		newID:        uuid.NewString,
	}
}

// WithRecorder injects a metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithoutProbe disables the per-build toolchain probe. The watch loop probes
// once at startup and rebuilds many times afterwards.
func (s *DefaultService) WithoutProbe() *DefaultService {
	s.skipProbe = true
	return s
}

// Run executes one build.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	tc, err := toolchain.New(s.toolchainCfg, s.runner, s.workdir, req.Local)
	if err != nil {
		return nil, err
	}

	src, out, err := s.validate(tc, req)
	if err != nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeInvalid)
		return nil, err
	}

	id := s.newID()
	mode := req.Mode()
	log := slog.With(logfields.BuildID(id), logfields.Mode(string(tc.Mode())), logfields.Stage(mode.String()))

	if !s.skipProbe {
		if err := tc.Probe(ctx); err != nil {
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			return nil, err
		}
	}

	outAbs := filepath.FromSlash(out)
	if !filepath.IsAbs(outAbs) {
		outAbs = filepath.Join(tc.Workdir(), outAbs)
	}
	if err := os.MkdirAll(outAbs, 0o750); err != nil {
		return nil, tberrors.FileSystemError("create output directory", err).WithContext("path", outAbs)
	}

	if req.CleanFirst {
		if err := s.cleanAux(ctx, tc, src, out, req, log); err != nil {
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			return nil, err
		}
	}

	log.Info("Building document", logfields.File(src), logfields.Output(out))
	cmd := tc.Command("latexmk", latexmk.BuildArgs(latexmk.Options{
		Source:    src,
		OutputDir: out,
		Mode:      mode,
		MaxPasses: s.toolchainCfg.MaxPasses,
	})...)
	s.attachStreams(&cmd, req)

	start := time.Now()
	res, err := tc.Runner().Run(ctx, cmd)
	if err != nil && ctx.Err() != nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, tberrors.Interrupted()
	}
	if err != nil {
		s.recorder.IncToolInvocation("latexmk", metrics.ResultNotFound)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, tberrors.ToolStartFailed(cmd.Name, err)
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	result := &Result{
		ID:       id,
		Mode:     mode,
		LogPath:  filepath.Join(outAbs, stem+".log"),
		ExitCode: res.ExitCode,
		Duration: time.Since(start),
	}
	s.applyReport(result, res)

	s.recorder.ObserveBuildDuration(string(tc.Mode()), result.Duration)

	if !res.Success() {
		s.recorder.IncToolInvocation("latexmk", metrics.ResultFailed)
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		log.Error("Build failed", logfields.ExitCode(res.ExitCode), logfields.Count(result.ErrorCount),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		return result, tberrors.ToolFailed("latexmk", res.ExitCode).
			WithContext("errors", result.Errors).
			WithContext("log", result.LogPath)
	}
	s.recorder.IncToolInvocation("latexmk", metrics.ResultSuccess)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)

	if mode != latexmk.ModeValidate {
		pdf := filepath.Join(outAbs, stem+".pdf")
		if fi, statErr := os.Stat(pdf); statErr == nil {
			result.PDFPath = pdf
			result.PDFSize = fi.Size()
		} else {
			log.Warn("latexmk succeeded but no PDF was found", logfields.Path(pdf))
		}
	}

	log.Info("Build finished",
		logfields.DurationMS(float64(result.Duration.Milliseconds())),
		slog.Int("warnings", result.Warnings),
		slog.Int("box_warnings", result.BoxWarnings))
	return result, nil
}

func (s *DefaultService) validate(tc toolchain.Toolchain, req Request) (src, out string, err error) {
	if req.Draft && req.ValidateOnly {
		return "", "", tberrors.ValidationFailed("mode", "--draft and --validate-only cannot be combined")
	}
	if req.Source == "" {
		return "", "", tberrors.ValidationFailed("src", "source document is required")
	}
	if !strings.EqualFold(filepath.Ext(req.Source), ".tex") {
		return "", "", tberrors.ValidationFailed("src", req.Source+" is not a .tex file")
	}

	srcAbs := req.Source
	if !filepath.IsAbs(srcAbs) {
		srcAbs = filepath.Join(tc.Workdir(), srcAbs)
	}
	fi, statErr := os.Stat(srcAbs)
	if statErr != nil {
		return "", "", tberrors.PathNotFound("source document", req.Source)
	}
	if fi.IsDir() {
		return "", "", tberrors.ValidationFailed("src", req.Source+" is a directory")
	}

	if src, err = tc.Path(srcAbs); err != nil {
		return "", "", err
	}
	output := req.Output
	if output == "" {
		output = "build"
	}
	if out, err = tc.Path(output); err != nil {
		return "", "", err
	}
	return src, out, nil
}

func (s *DefaultService) cleanAux(ctx context.Context, tc toolchain.Toolchain, src, out string, req Request, log *slog.Logger) error {
	log.Info("Cleaning auxiliary files", logfields.File(src))
	cmd := tc.Command("latexmk", latexmk.CleanArgs(src, out)...)
	s.attachStreams(&cmd, req)
	res, err := tc.Runner().Run(ctx, cmd)
	if err != nil {
		return tberrors.ToolStartFailed(cmd.Name, err)
	}
	if !res.Success() {
		return tberrors.ToolFailed("latexmk -c", res.ExitCode)
	}
	return nil
}

func (s *DefaultService) attachStreams(cmd *runner.Command, req Request) {
	if !req.Verbose {
		return
	}
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
}

// applyReport scans the TeX log, falling back to captured output when the
// log was not written.
func (s *DefaultService) applyReport(result *Result, res *runner.Result) {
	var rep latexmk.Report
	if f, err := os.Open(result.LogPath); err == nil {
		rep, err = latexmk.Scan(f)
		_ = f.Close()
		if err != nil {
			slog.Debug("TeX log scan incomplete", logfields.Path(result.LogPath), logfields.Error(err))
		}
	} else {
		rep = latexmk.ScanString(res.Combined())
	}
	result.Errors = rep.Errors
	result.ErrorCount = rep.ErrorCount
	result.Warnings = rep.Warnings
	result.BoxWarnings = rep.BoxWarnings
	result.UndefinedRefs = rep.UndefinedRefs
}
