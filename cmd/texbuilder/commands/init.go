package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/project"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Title            string `help:"Document title"`
	Author           string `help:"Author name"`
	KeepSamples      bool   `name:"keep-samples" help:"Keep the sample introduction chapter"`
	KeepBibliography bool   `name:"keep-bibliography" help:"Keep the sample bibliography"`
	ResetGit         bool   `name:"reset-git" help:"Delete the git history and start a new repository"`
	Yes              bool   `short:"y" help:"Answer every question with its default"`
	ConfigFile       bool   `name:"config-file" help:"Also write a texbuilder.yaml with the default settings"`
	Force            bool   `help:"Overwrite an existing texbuilder.yaml (with --config-file)"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	wd, err := g.workdir("")
	if err != nil {
		return err
	}

	p := g.printer()
	pr := prompt.New(g.stdin(), g.stdout(), i.Yes || config.DetectCI())
	if err := project.New(p, pr).Run(project.Options{
		Root:             wd,
		Title:            i.Title,
		Author:           i.Author,
		KeepSamples:      i.KeepSamples,
		KeepBibliography: i.KeepBibliography,
		ResetGit:         i.ResetGit,
	}); err != nil {
		return err
	}

	if !i.ConfigFile {
		return nil
	}
	path := root.Config
	if !filepath.IsAbs(path) {
		path = filepath.Join(wd, path)
	}
	if err := config.Init(path, i.Force); err != nil {
		p.Failure("Could not write %s: %v", root.Config, err)
		return err
	}
	p.Success("Wrote %s", root.Config)
	return nil
}
