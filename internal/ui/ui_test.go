package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithColor(&buf, false)

	p.Heading("Building %s", "main.tex")
	p.Success("done in %ds", 3)
	p.Failure("broken")
	p.Warn("careful")
	p.Info("fyi")

	assert.Equal(t, "Building main.tex\n✓ done in 3s\n✗ broken\n! careful\n· fyi\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := NewWithColor(&buf, false)

	p.Table([]string{"File", "chktex"}, [][]string{{"src/main.tex", "2"}, {"src/chapters/01.tex", "0"}})

	out := buf.String()
	assert.Contains(t, out, "File")
	assert.Contains(t, out, "src/chapters/01.tex")
	assert.Contains(t, out, "│")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinter_Indented(t *testing.T) {
	var buf bytes.Buffer
	NewWithColor(&buf, false).Indented("a\nb\n")
	assert.Equal(t, "  a\n  b\n", buf.String())
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")

	var buf bytes.Buffer
	assert.False(t, ColorEnabled(&buf), "non-file writers are never coloured")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout))
}

func TestColorEnabled_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.False(t, ColorEnabled(os.Stdout))
}
