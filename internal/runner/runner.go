// Package runner executes external tools and captures their output.
//
// A non-zero exit status is a normal outcome here and is reported through
// Result.ExitCode; only failures to start a process are returned as errors.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/logfields"
)

// ErrToolNotFound is returned when the requested binary cannot be located or started.
var ErrToolNotFound = errors.New("tool not found")

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string

	// Stdout and Stderr optionally receive live output in addition to the
	// captured buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs and dry runs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a process that was started.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool { return r != nil && r.ExitCode == 0 }

// Combined returns stdout followed by stderr.
func (r *Result) Combined() string {
	if r == nil {
		return ""
	}
	switch {
	case r.Stderr == "":
		return r.Stdout
	case r.Stdout == "":
		return r.Stderr
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// FirstLine returns the first non-empty output line, trimmed.
func (r *Result) FirstLine() string {
	for _, line := range strings.Split(r.Combined(), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// Runner abstracts process execution so callers can be tested without the
// TeX toolchain installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner { return &ExecRunner{} }

// LookPath resolves name on PATH without spawning anything.
func (ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
	}
	return p, nil
}

// Run starts the command, waits for it and captures both output streams.
func (ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)

	slog.Debug("Running external tool", logfields.Tool(c.Name), slog.String("command", c.String()), logfields.Path(c.Dir))

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", c.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			slog.Debug("External tool exited non-zero", logfields.Tool(c.Name), logfields.ExitCode(res.ExitCode))
			return res, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrToolNotFound, c.Name, err)
	}

	slog.Debug("External tool finished", logfields.Tool(c.Name), logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

func tee(buf *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return buf
	}
	return io.MultiWriter(buf, live)
}
