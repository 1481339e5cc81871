package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/justhtml/internal/config"
	"git.home.luguber.info/inful/justhtml/internal/git"
	"git.home.luguber.info/inful/justhtml/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
	Git   bool `help:"Also initialize a git repository next to the configuration file"`

	out io.Writer
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := i.out
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintln(out, "Initializing justhtml project")
	res, err := config.Init(root.Config, i.Force)
	if err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	logger := loggerOf(g)
	for _, p := range res.Created {
		logger.Info("Created", logfields.Path(p))
	}
	for _, p := range res.Skipped {
		logger.Debug("Kept existing file", logfields.Path(p))
	}
	if i.Git {
		dir := filepath.Dir(root.Config)
		created, err := git.InitRepository(dir)
		if err != nil {
			return err
		}
		if created {
			logger.Info("Initialized git repository", logfields.Path(dir))
		}
	}
	_, _ = fmt.Fprintf(out, "Wrote %s; run `justhtml build` next\n", root.Config)
	return nil
}
