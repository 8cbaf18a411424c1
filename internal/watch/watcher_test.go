package watch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Relevant(t *testing.T) {
	root := filepath.FromSlash("/project")
	f := Filter{
		Extensions: []string{".tex", ".bib", ".sty", ".cls"},
		Ignore:     []string{filepath.Join(root, "build")},
	}

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.tex", true},
		{"src/bibliography/references.bib", true},
		{"styles/thesis.sty", true},
		{"styles/thesis.cls", true},
		{"src/MAIN.TEX", true},
		{"assets/images/logo.png", false},
		{"src/.main.tex.swp", false},
		{"src/main.tex~", false},
		{"src/#main.tex#", false},
		{"src/.hidden.tex", false},
		{"src/4913", false},
		{"build/main.tex", false},
		{"build/sub/chapter.aux", false},
		{"buildings/plan.tex", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Relevant(filepath.Join(root, filepath.FromSlash(tt.path))))
		})
	}
}
