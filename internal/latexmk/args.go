// Package latexmk builds latexmk command lines and interprets the TeX log
// they leave behind.
package latexmk

import "strconv"

// Mode selects the kind of compilation.
type Mode int

const (
	ModeFull Mode = iota
	ModeDraft
	ModeValidate
)

func (m Mode) String() string {
	switch m {
	case ModeDraft:
		return "draft"
	case ModeValidate:
		return "validate"
	default:
		return "full"
	}
}

// Options are the inputs to BuildArgs. Source and OutputDir must already be
// expressed relative to the toolchain working directory.
type Options struct {
	Source    string
	OutputDir string
	Mode      Mode
	MaxPasses int
}

// BuildArgs returns the latexmk arguments for opts. The source path is last.
func BuildArgs(opts Options) []string {
	args := []string{
		"-pdf",
		"-shell-escape",
		"-interaction=nonstopmode",
		"-file-line-error",
		"-g",
		"-output-directory=" + opts.OutputDir,
	}
	if opts.MaxPasses > 0 {
		args = append(args, "-e", "$max_repeat="+strconv.Itoa(opts.MaxPasses))
	}

	switch opts.Mode {
	case ModeDraft:
		args = append(args, "-pdflatex=pdflatex -shell-escape -draftmode %O %S", "-bibtex-")
	case ModeValidate:
		args = append(args, "-pdflatex=pdflatex -shell-escape -draftmode -halt-on-error %O %S", "-bibtex-")
	}

	return append(args, opts.Source)
}

// CleanArgs returns the arguments removing latexmk's auxiliary files for source.
func CleanArgs(source, outputDir string) []string {
	return []string{"-c", "-output-directory=" + outputDir, source}
}
