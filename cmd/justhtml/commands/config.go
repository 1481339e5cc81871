package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/justhtml/internal/config"
)

// ConfigCmd groups configuration subcommands.
type ConfigCmd struct {
	Validate ConfigValidateCmd `cmd:"" help:"Load and validate the configuration file"`
}

// ConfigValidateCmd implements 'config validate'.
type ConfigValidateCmd struct {
	Print bool `help:"Print the effective configuration with defaults applied"`

	out io.Writer
}

func (v *ConfigValidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	out := v.out
	if out == nil {
		out = os.Stdout
	}
	if v.Print {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, _ = out.Write(data)
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s is valid\n", root.Config)
	return nil
}
