package latexmk

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// MaxReportedErrors caps the error lines surfaced on failure.
const MaxReportedErrors = 10

var (
	fileLineError = regexp.MustCompile(`^[^\s:]+\.(?:tex|sty|cls|bib|bbl|aux):\d+: `)
	warningLine   = regexp.MustCompile(`^(?:LaTeX|(?:Package|Class) \S+) Warning:`)
	boxLine       = regexp.MustCompile(`^(?:Overfull|Underfull) \\[hv]box`)
	undefinedRef  = regexp.MustCompile(`(?:Citation|Reference) .* undefined`)
)

// Report summarises a TeX log.
type Report struct {
	Errors        []string // last MaxReportedErrors error lines
	ErrorCount    int
	Warnings      int
	BoxWarnings   int
	UndefinedRefs int
}

// HasErrors reports whether any error line was seen.
func (r Report) HasErrors() bool { return r.ErrorCount > 0 }

// Scan reads a TeX log and classifies its lines.
func Scan(r io.Reader) (Report, error) {
	var rep Report
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case isError(line):
			rep.ErrorCount++
			rep.Errors = append(rep.Errors, line)
			if len(rep.Errors) > MaxReportedErrors {
				rep.Errors = rep.Errors[1:]
			}
		case warningLine.MatchString(line):
			rep.Warnings++
			if undefinedRef.MatchString(line) {
				rep.UndefinedRefs++
			}
		case boxLine.MatchString(line):
			rep.BoxWarnings++
		}
	}
	return rep, sc.Err()
}

// ScanString is Scan over in-memory output.
func ScanString(s string) Report {
	rep, _ := Scan(strings.NewReader(s))
	return rep
}

func isError(line string) bool {
	if strings.HasPrefix(line, "!") || fileLineError.MatchString(line) {
		return true
	}
	// Warning lines may mention "Error" in their text; those stay warnings.
	return strings.Contains(line, "Error") && !warningLine.MatchString(line)
}
