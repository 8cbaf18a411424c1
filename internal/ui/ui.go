// Package ui renders user-facing console output: headings, status markers and
// tables. Diagnostics go through slog; everything here goes to stdout.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"git.home.luguber.info/inful/texbuilder/internal/config"
)

// Status markers.
const (
	MarkOK   = "✓"
	MarkFail = "✗"
	MarkWarn = "!"
	MarkInfo = "·"
)

// Printer writes styled output to a single writer.
type Printer struct {
	out    io.Writer
	color  bool
	styles styles
}

type styles struct {
	heading lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

// New returns a Printer for out, enabling colour when ColorEnabled(out).
func New(out io.Writer) *Printer {
	return NewWithColor(out, ColorEnabled(out))
}

// NewWithColor returns a Printer with colour explicitly on or off.
func NewWithColor(out io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		out:   out,
		color: color,
		styles: styles{
			heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
			ok:      r.NewStyle().Foreground(lipgloss.Color("#50C878")),
			fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
			warn:    r.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
			muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
			header:  r.NewStyle().Bold(true).Padding(0, 1),
			cell:    r.NewStyle().Padding(0, 1),
			border:  r.NewStyle().Foreground(lipgloss.Color("#444444")),
		},
	}
}

// ColorEnabled reports whether out should receive ANSI styling: never when
// NO_COLOR is set, TERM is dumb, or running in CI; otherwise only on a terminal.
func ColorEnabled(out io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" || config.DetectCI() {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

// Color reports whether styling is enabled.
func (p *Printer) Color() bool { return p.color }

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// Heading prints a bold section title.
func (p *Printer) Heading(format string, args ...any) {
	p.println(p.styles.heading.Render(fmt.Sprintf(format, args...)))
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	p.println(p.styles.ok.Render(MarkOK) + " " + fmt.Sprintf(format, args...))
}

// Failure prints a line prefixed with a cross.
func (p *Printer) Failure(format string, args ...any) {
	p.println(p.styles.fail.Render(MarkFail) + " " + fmt.Sprintf(format, args...))
}

// Warn prints a line prefixed with an exclamation mark.
func (p *Printer) Warn(format string, args ...any) {
	p.println(p.styles.warn.Render(MarkWarn) + " " + fmt.Sprintf(format, args...))
}

// Info prints an unobtrusive line.
func (p *Printer) Info(format string, args ...any) {
	p.println(p.styles.muted.Render(MarkInfo) + " " + fmt.Sprintf(format, args...))
}

// Plain prints text without decoration.
func (p *Printer) Plain(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

// Indented prints each line of text indented by two spaces.
func (p *Printer) Indented(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		p.println("  " + line)
	}
}

// Table prints a bordered table.
func (p *Printer) Table(headers []string, rows [][]string) {
	p.println(p.RenderTable(headers, rows))
}

// RenderTable renders a bordered table without printing it.
func (p *Printer) RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header
			}
			return p.styles.cell
		})
	return t.String()
}

// Mark returns the marker for a pass/fail state, styled.
func (p *Printer) Mark(ok bool) string {
	if ok {
		return p.styles.ok.Render(MarkOK)
	}
	return p.styles.fail.Render(MarkFail)
}
