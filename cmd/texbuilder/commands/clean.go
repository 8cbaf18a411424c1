package commands

import (
	"path/filepath"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/texbuilder/internal/clean"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	DryRun   bool   `short:"n" name:"dry-run" help:"List what would be removed without deleting anything"`
	All      bool   `short:"a" help:"Remove everything in the build directory, including PDFs"`
	BuildDir string `short:"b" name:"build-dir" help:"Build directory (default from config: build)"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wd, err := g.workdir(cfg.Toolchain.Workdir)
	if err != nil {
		return err
	}

	plan, err := clean.NewPlan(clean.Options{
		Root:       wd,
		SourceDir:  filepath.Dir(filepath.FromSlash(cfg.Document.Source)),
		BuildDir:   pick(c.BuildDir, cfg.Document.Output),
		Extensions: cfg.Clean.Extensions,
		Keep:       cfg.Clean.Keep,
		All:        c.All,
	})
	if err != nil {
		return tberrors.FileSystemError("collect generated files", err)
	}

	p := g.printer()
	if plan.Empty() {
		p.Success("Nothing to clean")
		return nil
	}

	if c.DryRun {
		p.Heading("Would remove %d entries (%s)", len(plan.Entries), plan.HumanSize())
		for _, e := range plan.Entries {
			p.Info("%s", displayEntry(wd, e))
		}
		return nil
	}

	out := clean.Apply(plan)
	for _, e := range out.Removed {
		p.Success("Removed %s", displayEntry(wd, e))
	}
	for _, f := range out.Failed {
		p.Failure("Could not remove %s: %v", relTo(wd, f.Path), f.Err)
	}
	p.Plain("")
	p.Success("Removed %d entries, freed %s", len(out.Removed), humanize.Bytes(uint64(out.FreedSize)))
	if len(out.Failed) > 0 {
		p.Warn("%d entries could not be removed", len(out.Failed))
	}
	return nil
}

func displayEntry(wd string, e clean.Entry) string {
	name := relTo(wd, e.Path)
	if e.Dir {
		name += "/"
	}
	return name
}
