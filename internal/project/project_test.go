package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/layout"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
	"git.home.luguber.info/inful/texbuilder/internal/testutil/testutils"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

func newInitializer(answers string, assume bool) (*Initializer, *bytes.Buffer) {
	var out bytes.Buffer
	return New(ui.NewWithColor(&out, false), prompt.New(strings.NewReader(answers), &out, assume)), &out
}

func TestUpdateMainDocument(t *testing.T) {
	root := testutils.TemplateProject(t)
	require.NoError(t, UpdateMainDocument(root, "On Typesetting", "Ada Lovelace"))

	testutils.NewFileAssertions(t, root).
		AssertFileContains(layout.MainDocument, `\title{On Typesetting}`).
		AssertFileContains(layout.MainDocument, `\author{Ada Lovelace}`).
		AssertFileNotContains(layout.MainDocument, PlaceholderTitle)
}

func TestUpdatePackages(t *testing.T) {
	root := testutils.TemplateProject(t)
	require.NoError(t, UpdatePackages(root, "On Typesetting", "Ada Lovelace"))

	testutils.NewFileAssertions(t, root).
		AssertFileContains(layout.PackagesFile, "pdftitle={On Typesetting}").
		AssertFileContains(layout.PackagesFile, "pdfauthor={Ada Lovelace}").
		AssertFileContains(layout.PackagesFile, "pdfsubject={On Typesetting}").
		AssertFileContains(layout.PackagesFile, `\addbibresource{bibliography/references.bib}`)
}

func TestClearSamples(t *testing.T) {
	root := testutils.TemplateProject(t)
	require.NoError(t, ClearIntroduction(root))
	require.NoError(t, ClearBibliography(root))

	testutils.NewFileAssertions(t, root).
		AssertFileContains(layout.IntroChapter, `\section{Introduction}`).
		AssertFileNotContains(layout.IntroChapter, "knuth1984").
		AssertFileNotContains(layout.BibliographyFile, "@book")
}

func TestResetGit(t *testing.T) {
	root := testutils.TemplateProject(t)
	old := testutils.CommitAll(t, root, "template history")
	_, err := old.Head()
	require.NoError(t, err)

	require.NoError(t, ResetGit(root))

	repo, err := git.PlainOpen(root)
	require.NoError(t, err)
	_, err = repo.Head()
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound, "new repository must have no commits")
	testutils.NewFileAssertions(t, root).AssertFileExists(layout.MainDocument)
}

func TestGather_FlagsSkipPrompts(t *testing.T) {
	i, out := newInitializer("", false)
	a := i.Gather(Options{Title: "T", Author: "A", KeepSamples: true, KeepBibliography: true, ResetGit: true})

	assert.Equal(t, Answers{Title: "T", Author: "A", ResetGit: true}, a)
	assert.Empty(t, out.String())
}

func TestGather_Interactive(t *testing.T) {
	i, _ := newInitializer("My Thesis\n\nn\n\ny\n", false)
	a := i.Gather(Options{})

	assert.Equal(t, Answers{
		Title:             "My Thesis",
		Author:            PlaceholderAuthor,
		ClearSamples:      false,
		ClearBibliography: true,
		ResetGit:          true,
	}, a)
}

func TestGather_DefaultsNeverResetGit(t *testing.T) {
	i, _ := newInitializer("", true)
	a := i.Gather(Options{})

	assert.Equal(t, "My Document", a.Title)
	assert.True(t, a.ClearSamples)
	assert.True(t, a.ClearBibliography)
	assert.False(t, a.ResetGit)
}

func TestRun_AppliesAfterConfirmation(t *testing.T) {
	root := testutils.TemplateProject(t)
	i, out := newInitializer("", true)

	require.NoError(t, i.Run(Options{Root: root, Title: "Report", Author: "Grace"}))

	testutils.NewFileAssertions(t, root).
		AssertFileContains(layout.MainDocument, `\title{Report}`).
		AssertFileNotContains(layout.IntroChapter, "knuth1984").
		AssertFileNotExists(".git")
	assert.Contains(t, out.String(), "Project initialized")
}

func TestRun_Cancelled(t *testing.T) {
	root := testutils.TemplateProject(t)
	i, out := newInitializer("n\nn\n", false)

	require.NoError(t, i.Run(Options{Root: root, Title: "T", Author: "A", KeepSamples: true, KeepBibliography: true}))

	assert.Equal(t, testutils.MainTex, testutils.NewFileAssertions(t, root).Read(layout.MainDocument))
	assert.Contains(t, out.String(), "Cancelled")
}

func TestApply_ContinuesAfterFailure(t *testing.T) {
	root := testutils.TemplateProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, filepath.FromSlash(layout.MainDocument))))
	i, out := newInitializer("", true)

	err := i.Apply(root, Answers{Title: "T", Author: "A", ClearBibliography: true})

	require.Error(t, err)
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryCheck))
	assert.Equal(t, tberrors.ExitFailure, tberrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	testutils.NewFileAssertions(t, root).
		AssertFileContains(layout.PackagesFile, "pdftitle={T}").
		AssertFileNotContains(layout.BibliographyFile, "@book")
	assert.Contains(t, out.String(), "Some operations failed")
}
