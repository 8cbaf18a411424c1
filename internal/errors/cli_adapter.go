package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if tbe, ok := As(err); ok {
		return a.exitCodeFromTexBuilder(tbe)
	}

	return ExitFailure
}

// exitCodeFromTexBuilder maps TexBuilderError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromTexBuilder(err *TexBuilderError) int {
	switch err.Category {
	case CategoryValidation, CategoryConfig:
		return ExitUsage
	case CategoryToolchain:
		if err.ExitCode > 0 {
			return err.ExitCode
		}
		return ExitFailure
	case CategoryInterrupted:
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if tbe, ok := As(err); ok {
		return a.formatTexBuilder(tbe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatTexBuilder formats a TexBuilderError for display.
func (a *CLIErrorAdapter) formatTexBuilder(err *TexBuilderError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation, CategoryInterrupted:
		return err.Message
	case CategoryDependency:
		if hint, ok := err.Context["hint"].(string); ok && hint != "" {
			return fmt.Sprintf("%s\n%s", err.Message, hint)
		}
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if tbe, ok := As(err); ok {
		return tbe.Category == CategoryInternal ||
			tbe.Category == CategoryFileSystem
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if tbe, ok := As(err); ok {
		level := a.slogLevelFromSeverity(tbe.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(tbe.Category)),
		}
		for k, v := range tbe.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if tbe.Cause != nil {
			attrs = append(attrs, slog.String("cause", tbe.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, tbe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts TexBuilderError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
