package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/justhtml/internal/config"
	"git.home.luguber.info/inful/justhtml/internal/site"
)

// BuildCmd implements the 'build' command. Flags override the config file.
type BuildCmd struct {
	Workers  int    `short:"w" help:"Number of content files rendered concurrently (overrides build_config.workers)"`
	Sanitize bool   `help:"Sanitize rendered Markdown HTML"`
	Report   bool   `help:"Write build-report files into the build directory"`
	Format   string `name:"report-format" help:"Report format (json|yaml)"`

	out io.Writer
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	b.apply(cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	rep, err := site.NewBuilder(cfg, site.WithLogger(loggerOf(g))).Build(ctx)
	if err != nil {
		return err
	}
	out := b.out
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintln(out, rep.Summary())
	return nil
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Workers > 0 {
		cfg.Build.Workers = b.Workers
	}
	if b.Sanitize {
		cfg.Build.Sanitize = true
	}
	if b.Report {
		cfg.Build.Report = true
	}
	if b.Format != "" {
		cfg.Build.ReportFormat = b.Format
	}
}
