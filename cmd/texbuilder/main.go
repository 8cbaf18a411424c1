package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texbuilder/cmd/texbuilder/commands"
	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
	"git.home.luguber.info/inful/texbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("texbuilder"),
		kong.Description("Build, check and watch LaTeX documents from the project template."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			// Parse failures are usage errors; --help and --version exit 0.
			if code != 0 {
				code = tberrors.ExitUsage
			}
			os.Exit(code)
		}),
	)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&commands.Global{}, cli)
	tberrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
