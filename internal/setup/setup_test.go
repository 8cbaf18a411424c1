package setup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
	"git.home.luguber.info/inful/texbuilder/internal/runner/runnertest"
	"git.home.luguber.info/inful/texbuilder/internal/ui"
)

func newSetup(fake *runnertest.Fake, answers string, assume bool) (*Setup, *bytes.Buffer) {
	var out bytes.Buffer
	p := ui.NewWithColor(&out, false)
	return New(fake, p, prompt.New(strings.NewReader(answers), &out, assume)), &out
}

func dockerOK() *runnertest.Fake {
	return runnertest.New().Exit("docker --version", 0, "Docker version 27.1.1, build 6312585\n")
}

func TestRun_ImagePresent(t *testing.T) {
	root := t.TempDir()
	fake := dockerOK().Exit("docker images -q img", 0, "abc123\n").Missing("act")
	s, out := newSetup(fake, "", false)

	require.NoError(t, s.Run(context.Background(), Options{Root: root, Image: "img"}))

	assert.False(t, fake.Ran("docker pull"))
	assert.Contains(t, out.String(), "Docker version 27.1.1")
	assert.Contains(t, out.String(), "act not found (optional)")
	assert.Contains(t, out.String(), "uv found at /usr/bin/uv")
	for _, rel := range []string{"build", "assets/images", "assets/figures", "tests/fixtures"} {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestRun_PullsAfterConfirmation(t *testing.T) {
	fake := dockerOK().Exit("docker images -q img", 0, "")
	s, _ := newSetup(fake, "y\n", false)

	require.NoError(t, s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"}))
	assert.True(t, fake.Ran("docker pull img"))
}

func TestRun_DeclinedPull(t *testing.T) {
	fake := dockerOK().Exit("docker images -q img", 0, "")
	s, out := newSetup(fake, "n\n", false)

	require.NoError(t, s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"}))
	assert.False(t, fake.Ran("docker pull"))
	assert.Contains(t, out.String(), "Image not pulled")
}

func TestRun_AssumeDefaultsPulls(t *testing.T) {
	fake := dockerOK().Exit("docker images -q img", 0, "")
	s, _ := newSetup(fake, "", true)

	require.NoError(t, s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"}))
	assert.True(t, fake.Ran("docker pull img"))
}

func TestRun_NoPull(t *testing.T) {
	fake := dockerOK().Exit("docker images -q img", 0, "")
	s, _ := newSetup(fake, "", true)

	require.NoError(t, s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img", NoPull: true}))
	assert.False(t, fake.Ran("docker pull"))
}

func TestRun_PullFailure(t *testing.T) {
	fake := dockerOK().Exit("docker images -q img", 0, "").Exit("docker pull img", 1, "")
	s, _ := newSetup(fake, "", true)

	err := s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"})
	require.Error(t, err)
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryToolchain))
}

func TestRun_DockerMissing(t *testing.T) {
	fake := runnertest.New().Missing("docker")
	s, out := newSetup(fake, "", true)

	err := s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"})
	require.Error(t, err)
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryDependency))
	assert.Contains(t, out.String(), "https://docs.docker.com/engine/install/")
	assert.Empty(t, fake.Calls())
}

func TestRun_DaemonStopped(t *testing.T) {
	fake := dockerOK().Exit("docker info", 1, "Cannot connect to the Docker daemon")
	s, _ := newSetup(fake, "", true)

	err := s.Run(context.Background(), Options{Root: t.TempDir(), Image: "img"})
	require.Error(t, err)
	assert.True(t, tberrors.IsCategory(err, tberrors.CategoryDependency))
	assert.False(t, fake.Ran("docker images"))
}
