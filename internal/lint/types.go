// Package lint runs chktex (and optionally lacheck) over LaTeX sources and
// collects their warnings.
package lint

// Tool names.
const (
	ToolChktex  = "chktex"
	ToolLacheck = "lacheck"
)

// Issue represents a single warning reported by a lint tool.
type Issue struct {
	File    string // project-relative path
	Tool    string
	Rule    string // chktex warning number; empty for lacheck
	Line    int    // 0 when the tool did not report one
	Message string
}

// FileResult summarises one linted file.
type FileResult struct {
	File    string
	Chktex  int
	Lacheck int
	// Err is set when a tool could not be run for this file; the file is skipped.
	Err error
}

// Result contains all issues found during linting.
type Result struct {
	Files  []FileResult
	Issues []Issue
}

// WarningCount returns the number of issues across all tools.
func (r *Result) WarningCount() int { return len(r.Issues) }

// HasWarnings reports whether any tool reported anything.
func (r *Result) HasWarnings() bool { return len(r.Issues) > 0 }

// SkippedCount returns the number of files a tool could not be run for.
func (r *Result) SkippedCount() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Config contains configuration for the linter.
type Config struct {
	// ChktexVerbosity is passed as -v<N>; 0 is chktex's quiet level.
	ChktexVerbosity int

	// Lacheck also runs lacheck on every file.
	Lacheck bool
}
