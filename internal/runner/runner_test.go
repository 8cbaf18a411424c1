package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	requireShell(t)
	var live bytes.Buffer

	res, err := NewExecRunner().Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo out; echo err 1>&2"},
		Stdout: &live,
	})
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, "out\n", live.String())
	assert.Equal(t, "out", res.FirstLine())
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)

	res, err := NewExecRunner().Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 12"}})
	require.NoError(t, err)
	assert.Equal(t, 12, res.ExitCode)
	assert.False(t, res.Success())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{Name: "texbuilder-definitely-not-installed"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))

	_, err = r.LookPath("texbuilder-definitely-not-installed")
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestExecRunner_RunsInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	res, err := NewExecRunner().Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd"}, Dir: dir})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "latexmk", Command{Name: "latexmk"}.String())
	assert.Equal(t, "latexmk -c src/main.tex", Command{Name: "latexmk", Args: []string{"-c", "src/main.tex"}}.String())
}

func TestResultCombined(t *testing.T) {
	assert.Equal(t, "", (*Result)(nil).Combined())
	assert.Equal(t, "a", (&Result{Stdout: "a"}).Combined())
	assert.Equal(t, "b", (&Result{Stderr: "b"}).Combined())
	assert.Equal(t, "a\nb", (&Result{Stdout: "a", Stderr: "b"}).Combined())
	assert.Equal(t, "biber version: 2.19", (&Result{Stdout: "\n  biber version: 2.19\nmore"}).FirstLine())
}
