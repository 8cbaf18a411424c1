// Package project turns a fresh copy of the template into a new document:
// it fills in title and author, optionally strips the sample content and
// optionally starts a new git history.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/layout"
	"git.home.luguber.info/inful/texbuilder/internal/logfields"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

// Placeholders shipped in the template.
const (
	PlaceholderTitle   = "Document Title"
	PlaceholderAuthor  = "Author Name"
	PlaceholderSubject = "Subject"
)

// Options holds values given on the command line. Empty strings and false
// flags are asked for interactively.
type Options struct {
	Root             string
	Title            string
	Author           string
	KeepSamples      bool
	KeepBibliography bool
	ResetGit         bool
}

// Answers is the resolved set of choices applied to the project.
type Answers struct {
	Title             string
	Author            string
	ClearSamples      bool
	ClearBibliography bool
	ResetGit          bool
}

// Initializer asks for the project details and applies them.
type Initializer struct {
	printer *ui.Printer
	prompt  *prompt.Prompter
}

// New returns an Initializer.
func New(p *ui.Printer, pr *prompt.Prompter) *Initializer {
	return &Initializer{printer: p, prompt: pr}
}

// Run gathers answers, shows a summary and applies it after confirmation.
// Declining the confirmation is not an error.
func (i *Initializer) Run(opts Options) error {
	i.printer.Heading("New document")
	answers := i.Gather(opts)

	i.printer.Plain("")
	i.printer.Table([]string{"Setting", "Value"}, [][]string{
		{"Title", answers.Title},
		{"Author", answers.Author},
		{"Clear sample chapter", yesNo(answers.ClearSamples)},
		{"Clear bibliography", yesNo(answers.ClearBibliography)},
		{"Reset git history", yesNo(answers.ResetGit)},
	})

	if !i.prompt.Confirm("Proceed with these settings?", true) {
		i.printer.Warn("Cancelled")
		return nil
	}
	return i.Apply(opts.Root, answers)
}

// Gather resolves every answer from opts, prompting for what is missing.
func (i *Initializer) Gather(opts Options) Answers {
	a := Answers{Title: opts.Title, Author: opts.Author}
	if a.Title == "" {
		a.Title = i.prompt.Ask("Document title", "My Document")
	}
	if a.Author == "" {
		a.Author = i.prompt.Ask("Author name", PlaceholderAuthor)
	}
	a.ClearSamples = !opts.KeepSamples && i.prompt.Confirm("Delete sample content (introduction chapter)?", true)
	a.ClearBibliography = !opts.KeepBibliography && i.prompt.Confirm("Delete sample bibliography?", true)
	a.ResetGit = opts.ResetGit || i.prompt.Confirm("Reset git history (start fresh)?", false)
	return a
}

type step struct {
	label string
	run   func() error
}

// Apply performs every selected step. A failing step does not stop the
// others; the returned error counts the failures.
func (i *Initializer) Apply(root string, a Answers) error {
	steps := []step{
		{"Updating " + layout.MainDocument, func() error { return UpdateMainDocument(root, a.Title, a.Author) }},
		{"Updating " + layout.PackagesFile, func() error { return UpdatePackages(root, a.Title, a.Author) }},
	}
	if a.ClearSamples {
		steps = append(steps, step{"Clearing sample introduction", func() error { return ClearIntroduction(root) }})
	}
	if a.ClearBibliography {
		steps = append(steps, step{"Clearing sample bibliography", func() error { return ClearBibliography(root) }})
	}
	if a.ResetGit {
		steps = append(steps, step{"Resetting git history", func() error { return ResetGit(root) }})
	}

	failed := 0
	for _, s := range steps {
		if err := s.run(); err != nil {
			failed++
			slog.Debug("Init step failed", logfields.Stage(s.label), logfields.Error(err))
			i.printer.Failure("%s: %v", s.label, err)
			continue
		}
		i.printer.Success("%s", s.label)
	}

	i.printer.Plain("")
	if failed > 0 {
		i.printer.Failure("Some operations failed. Check the errors above.")
		return tberrors.StepsFailed(failed)
	}
	i.printer.Success("Project initialized")
	i.printer.Indented(nextSteps)
	return nil
}

// UpdateMainDocument replaces the title and author placeholders in the main
// document.
func UpdateMainDocument(root, title, author string) error {
	return replaceInFile(filepath.Join(root, filepath.FromSlash(layout.MainDocument)), []string{
		`\title{` + PlaceholderTitle + `}`, `\title{` + title + `}`,
		`\author{` + PlaceholderAuthor + `}`, `\author{` + author + `}`,
	})
}

// UpdatePackages sets the PDF metadata in the package preamble. The subject
// is set to the title.
func UpdatePackages(root, title, author string) error {
	return replaceInFile(filepath.Join(root, filepath.FromSlash(layout.PackagesFile)), []string{
		"pdftitle={" + PlaceholderTitle + "}", "pdftitle={" + title + "}",
		"pdfauthor={" + PlaceholderAuthor + "}", "pdfauthor={" + author + "}",
		"pdfsubject={" + PlaceholderSubject + "}", "pdfsubject={" + title + "}",
	})
}

// ClearIntroduction replaces the sample introduction with an empty section.
func ClearIntroduction(root string) error {
	return writeSkeleton(root, layout.IntroChapter, introSkeleton)
}

// ClearBibliography replaces the sample references with an empty database.
func ClearBibliography(root string) error {
	return writeSkeleton(root, layout.BibliographyFile, bibliographySkeleton)
}

// ResetGit removes any existing repository and initializes an empty one.
func ResetGit(root string) error {
	if err := os.RemoveAll(filepath.Join(root, git.GitDirName)); err != nil {
		return tberrors.FileSystemError("remove git directory", err)
	}
	if _, err := git.PlainInit(root, false); err != nil {
		return tberrors.FileSystemError("initialize git repository", err)
	}
	return nil
}

func replaceInFile(path string, oldnew []string) error {
	// #nosec G304 -- path is built from the project root and fixed layout entries
	content, err := os.ReadFile(path)
	if err != nil {
		return tberrors.FileSystemError("read "+filepath.Base(path), err)
	}
	updated := strings.NewReplacer(oldnew...).Replace(string(content))
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		return tberrors.FileSystemError("write "+filepath.Base(path), err)
	}
	return nil
}

func writeSkeleton(root, rel, content string) error {
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return tberrors.FileSystemError("create "+filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return tberrors.FileSystemError(fmt.Sprintf("write %s", rel), err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

const rule = "% ============================================================================="

var introSkeleton = rule + `
% Introduction
` + rule + `

\section{Introduction}

% Your content here.

`

var bibliographySkeleton = rule + `
% Bibliography - BibLaTeX References
` + rule + `
% Add your references here.
% Use: \cite{key} or \textcite{key} in your document.
` + rule + `

`

var nextSteps = strings.TrimSpace(`
Next steps:
  1. texbuilder build          compile the document
  2. edit src/chapters/        add content
  3. texbuilder watch          rebuild on every change
`)
