package latexmk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs(t *testing.T) {
	base := []string{
		"-pdf", "-shell-escape", "-interaction=nonstopmode", "-file-line-error", "-g",
		"-output-directory=build", "-e", "$max_repeat=5",
	}

	tests := []struct {
		name string
		mode Mode
		want []string
	}{
		{"full", ModeFull, append(append([]string{}, base...), "src/main.tex")},
		{"draft", ModeDraft, append(append([]string{}, base...),
			"-pdflatex=pdflatex -shell-escape -draftmode %O %S", "-bibtex-", "src/main.tex")},
		{"validate", ModeValidate, append(append([]string{}, base...),
			"-pdflatex=pdflatex -shell-escape -draftmode -halt-on-error %O %S", "-bibtex-", "src/main.tex")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildArgs(Options{Source: "src/main.tex", OutputDir: "build", Mode: tt.mode, MaxPasses: 5})
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "src/main.tex", got[len(got)-1])
		})
	}
}

func TestBuildArgs_NoMaxPasses(t *testing.T) {
	got := BuildArgs(Options{Source: "a.tex", OutputDir: "out"})
	assert.NotContains(t, got, "-e")
}

func TestCleanArgs(t *testing.T) {
	assert.Equal(t, []string{"-c", "-output-directory=build", "src/main.tex"}, CleanArgs("src/main.tex", "build"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "full", ModeFull.String())
	assert.Equal(t, "draft", ModeDraft.String())
	assert.Equal(t, "validate", ModeValidate.String())
}
