// Package prompt asks interactive questions on the terminal, falling back to
// defaults when the session is not interactive.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers from in and writes questions to out. When
// AssumeDefaults is set no input is read and every default is taken.
type Prompter struct {
	in             *bufio.Reader
	out            io.Writer
	AssumeDefaults bool
}

// New returns a Prompter. assumeDefaults is typically --yes or CI.
func New(in io.Reader, out io.Writer, assumeDefaults bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, AssumeDefaults: assumeDefaults}
}

// Confirm asks a yes/no question. Empty input or EOF selects def.
func (p *Prompter) Confirm(question string, def bool) bool {
	if p.AssumeDefaults {
		return def
	}
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	_, _ = fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
	answer, err := p.readLine()
	if err != nil || answer == "" {
		return def
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Ask asks for free text. Empty input or EOF selects def.
func (p *Prompter) Ask(question, def string) string {
	if p.AssumeDefaults {
		return def
	}
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", question)
	}
	answer, err := p.readLine()
	if err != nil || answer == "" {
		return def
	}
	return answer
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
