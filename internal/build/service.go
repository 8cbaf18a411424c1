package build

import (
	"context"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/texbuilder/internal/latexmk"
)

// Service is the canonical interface for compiling a document.
type Service interface {
	// Run executes one build. The returned Result is non-nil whenever the
	// toolchain was invoked, including when the build failed.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs required to compile one document.
type Request struct {
	// Source is the .tex entry point.
	Source string

	// Output is the directory receiving the PDF and auxiliary files.
	Output string

	Draft        bool
	ValidateOnly bool

	// Local forces host execution regardless of configuration.
	Local bool

	// CleanFirst removes latexmk's auxiliary files before compiling.
	CleanFirst bool

	// Verbose streams tool output to Stdout/Stderr while it runs.
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// Mode returns the latexmk compilation mode implied by the request.
func (r Request) Mode() latexmk.Mode {
	switch {
	case r.ValidateOnly:
		return latexmk.ModeValidate
	case r.Draft:
		return latexmk.ModeDraft
	default:
		return latexmk.ModeFull
	}
}

// Result contains the outcome of a build execution.
type Result struct {
	ID       string
	Mode     latexmk.Mode
	PDFPath  string // empty unless a PDF was produced
	LogPath  string
	ExitCode int
	Duration time.Duration
	PDFSize  int64

	Errors        []string
	ErrorCount    int
	Warnings      int
	BoxWarnings   int
	UndefinedRefs int
}

// Success reports whether latexmk exited cleanly.
func (r *Result) Success() bool { return r != nil && r.ExitCode == 0 }

// HumanPDFSize renders the PDF size for display, e.g. "182 kB".
func (r *Result) HumanPDFSize() string {
	if r == nil || r.PDFPath == "" {
		return ""
	}
	return humanize.Bytes(uint64(r.PDFSize))
}
