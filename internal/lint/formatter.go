package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter renders a per-file table. Individual issues are listed only
// in verbose mode.
type TextFormatter struct {
	color   bool
	lacheck bool
	verbose bool
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor, lacheck, verbose bool) *TextFormatter {
	return &TextFormatter{color: useColor, lacheck: lacheck, verbose: verbose}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	p := ui.NewWithColor(w, f.color)

	headers := []string{"File", "chktex"}
	if f.lacheck {
		headers = append(headers, "lacheck")
	}
	rows := make([][]string, 0, len(result.Files))
	for _, fr := range result.Files {
		row := []string{fr.File, strconv.Itoa(fr.Chktex)}
		if f.lacheck {
			row = append(row, strconv.Itoa(fr.Lacheck))
		}
		if fr.Err != nil {
			row[1] = "skipped"
		}
		rows = append(rows, row)
	}
	p.Table(headers, rows)

	if f.verbose {
		for _, issue := range result.Issues {
			loc := issue.File
			if issue.Line > 0 {
				loc = fmt.Sprintf("%s:%d", issue.File, issue.Line)
			}
			tag := issue.Tool
			if issue.Rule != "" {
				tag += " #" + issue.Rule
			}
			p.Warn("%s [%s] %s", loc, tag, issue.Message)
		}
	}
	for _, fr := range result.Files {
		if fr.Err != nil {
			p.Failure("%s: %v", fr.File, fr.Err)
		}
	}

	n := result.WarningCount()
	switch {
	case n > 0:
		p.Warn("%d warning%s in %d file%s", n, pluralize(n), len(result.Files), pluralize(len(result.Files)))
		if !f.verbose {
			p.Info("Run with --verbose to see every warning")
		}
	default:
		p.Success("No lint warnings in %d file%s", len(result.Files), pluralize(len(result.Files)))
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal   int         `json:"files_total"`
	FilesSkipped int         `json:"files_skipped"`
	WarningCount int         `json:"warning_count"`
	Files        []JSONFile  `json:"files"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONFile is the per-file summary in JSON format.
type JSONFile struct {
	File    string `json:"file"`
	Chktex  int    `json:"chktex"`
	Lacheck int    `json:"lacheck"`
	Error   string `json:"error,omitempty"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	File    string `json:"file"`
	Tool    string `json:"tool"`
	Rule    string `json:"rule,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		FilesTotal:   len(result.Files),
		FilesSkipped: result.SkippedCount(),
		WarningCount: result.WarningCount(),
		Files:        []JSONFile{},
		Issues:       []JSONIssue{},
	}
	for _, fr := range result.Files {
		jf := JSONFile{File: fr.File, Chktex: fr.Chktex, Lacheck: fr.Lacheck}
		if fr.Err != nil {
			jf.Error = fr.Err.Error()
		}
		output.Files = append(output.Files, jf)
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue(issue))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor, lacheck, verbose bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(useColor, lacheck, verbose)
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
