package toolchain

import (
	"context"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/runner"
)

// ContainerWorkdir is where the project is mounted inside the container.
const ContainerWorkdir = "/workspace"

const dockerHint = "Start Docker or use --local to build with a host TeX installation"

// Docker runs every tool in a throwaway container with the project mounted.
type Docker struct {
	runner  runner.Runner
	workdir string
	image   string
}

// NewDocker returns a container toolchain for image.
func NewDocker(r runner.Runner, workdir, image string) *Docker {
	if image == "" {
		image = config.DefaultImage
	}
	return &Docker{runner: r, workdir: workdir, image: image}
}

func (d *Docker) Mode() config.ToolchainMode { return config.ModeDocker }
func (d *Docker) Workdir() string            { return d.workdir }
func (d *Docker) Runner() runner.Runner      { return d.runner }
func (d *Docker) Image() string              { return d.image }
func (d *Docker) Describe() string           { return "docker (" + d.image + ")" }

// Path rewrites p relative to the mounted workdir. Paths outside the mount
// do not exist in the container and are rejected.
func (d *Docker) Path(p string) (string, error) { return Rel(d.workdir, p) }

// Command wraps tool as docker run --rm -v <workdir>:/workspace -w /workspace <image> tool args...
func (d *Docker) Command(tool string, args ...string) runner.Command {
	full := []string{
		"run", "--rm",
		"-v", d.workdir + ":" + ContainerWorkdir,
		"-w", ContainerWorkdir,
		d.image, tool,
	}
	full = append(full, args...)
	return runner.Command{Name: "docker", Args: full, Dir: d.workdir}
}

// Probe checks the docker binary without spawning it, then asks the daemon
// for its status.
func (d *Docker) Probe(ctx context.Context) error {
	if _, err := d.runner.LookPath("docker"); err != nil {
		return tberrors.DependencyMissing("docker", "Install Docker or use --local to build with a host TeX installation", err)
	}
	return d.DaemonRunning(ctx)
}

// DaemonRunning reports whether docker info succeeds within ProbeTimeout.
func (d *Docker) DaemonRunning(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	res, err := d.runner.Run(ctx, runner.Command{Name: "docker", Args: []string{"info"}})
	if err != nil {
		return tberrors.DependencyMissing("docker daemon", dockerHint, err)
	}
	if !res.Success() {
		return tberrors.DependencyMissing("docker daemon", dockerHint, nil).
			WithContext("output", strings.TrimSpace(res.Combined()))
	}
	return nil
}

// Version returns the first line of docker --version.
func (d *Docker) Version(ctx context.Context) (string, error) {
	if _, err := d.runner.LookPath("docker"); err != nil {
		return "", tberrors.DependencyMissing("docker", "Install Docker: https://docs.docker.com/get-docker/", err)
	}
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	res, err := d.runner.Run(ctx, runner.Command{Name: "docker", Args: []string{"--version"}})
	if err != nil {
		return "", tberrors.DependencyMissing("docker", "Install Docker: https://docs.docker.com/get-docker/", err)
	}
	if !res.Success() {
		return "", tberrors.DependencyMissing("docker", "Reinstall Docker: docker --version failed", nil)
	}
	return res.FirstLine(), nil
}

// ImagePresent reports whether the image exists locally.
func (d *Docker) ImagePresent(ctx context.Context) (bool, error) {
	res, err := d.runner.Run(ctx, runner.Command{Name: "docker", Args: []string{"images", "-q", d.image}})
	if err != nil {
		return false, tberrors.DependencyMissing("docker", dockerHint, err)
	}
	if !res.Success() {
		return false, tberrors.ToolFailed("docker images", res.ExitCode)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// Pull downloads the image, streaming progress to out (os.Stdout when nil).
func (d *Docker) Pull(ctx context.Context, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	res, err := d.runner.Run(ctx, runner.Command{
		Name:   "docker",
		Args:   []string{"pull", d.image},
		Stdout: out,
		Stderr: out,
	})
	if err != nil {
		return tberrors.ToolStartFailed("docker pull", err)
	}
	if !res.Success() {
		return tberrors.ToolFailed("docker pull", res.ExitCode).WithContext("image", d.image)
	}
	return nil
}
