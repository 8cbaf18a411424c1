package commands

import (
	"context"

	"git.home.luguber.info/inful/texbuilder/internal/config"
	"git.home.luguber.info/inful/texbuilder/internal/prompt"
	"git.home.luguber.info/inful/texbuilder/internal/setup"
)

// SetupCmd implements the 'setup' command.
type SetupCmd struct {
	Yes    bool `short:"y" help:"Answer every question with its default (pull without asking)"`
	NoPull bool `name:"no-pull" help:"Never pull the TeX image"`
}

func (s *SetupCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	wd, err := g.workdir(cfg.Toolchain.Workdir)
	if err != nil {
		return err
	}

	p := g.printer()
	pr := prompt.New(g.stdin(), g.stdout(), s.Yes || config.DetectCI())
	return setup.New(g.runner(), p, pr).Run(context.Background(), setup.Options{
		Root:   wd,
		Image:  cfg.Toolchain.Image,
		NoPull: s.NoPull,
	})
}
