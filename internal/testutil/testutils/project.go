// Package testutils builds throwaway document projects for tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// Template placeholders as shipped in a fresh project.
const (
	MainTex = `\documentclass[11pt]{article}
\input{preamble/packages}
\title{Document Title}
\author{Author Name}
\begin{document}
\maketitle
\input{chapters/00-introduction}
\printbibliography
\end{document}
`

	PackagesTex = `\usepackage[backend=biber]{biblatex}
\addbibresource{bibliography/references.bib}
\usepackage{hyperref}
\hypersetup{
  pdftitle={Document Title},
  pdfauthor={Author Name},
  pdfsubject={Subject},
}
`

	IntroTex = `\section{Introduction}
Sample text citing \cite{knuth1984}.
`

	ReferencesBib = `@book{knuth1984,
  author = {Donald E. Knuth},
  title = {The {\TeX}book},
  year = {1984},
}
`
)

// TemplateFiles returns the files of a minimal project keyed by slash path.
func TemplateFiles() map[string]string {
	return map[string]string{
		"src/main.tex":                     MainTex,
		"src/preamble/packages.tex":        PackagesTex,
		"src/chapters/00-introduction.tex": IntroTex,
		"src/bibliography/references.bib":  ReferencesBib,
	}
}

// WriteProject writes files under a new temporary directory and returns it.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// TemplateProject writes TemplateFiles to a new temporary directory.
func TemplateProject(t *testing.T) string {
	t.Helper()
	return WriteProject(t, TemplateFiles())
}

// WriteFiles writes files relative to root, creating parent directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(rel), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}
