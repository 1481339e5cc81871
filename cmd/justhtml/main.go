package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/justhtml/cmd/justhtml/commands"
	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default()}
	parser := kong.Parse(cli,
		kong.Bind(global),
		kong.Name("justhtml"),
		kong.Description("Build a static HTML site from Markdown content and plain HTML templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
