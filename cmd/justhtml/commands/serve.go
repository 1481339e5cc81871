package commands

import (
	"git.home.luguber.info/inful/justhtml/internal/config"
	"git.home.luguber.info/inful/justhtml/internal/preview"
)

// ServeCmd builds the site, serves the build directory and rebuilds on
// change.
type ServeCmd struct {
	Port    int  `short:"p" help:"Port to listen on (overrides development_config.port)"`
	NoWatch bool `name:"no-watch" help:"Do not rebuild when sources change"`
	Metrics bool `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if s.Metrics {
		cfg.Development.Metrics = true
	}

	ctx, cancel := signalContext()
	defer cancel()

	return preview.Serve(ctx, cfg, preview.Options{
		ConfigPath: root.Config,
		Port:       s.Port,
		NoWatch:    s.NoWatch,
		Logger:     loggerOf(g),
	})
}
