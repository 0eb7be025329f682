package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dissemia/disseminate/internal/config"
)

// InitCmd scaffolds a new project from a starter, modeled on the
// teacher's InitCmd but extended with a starter name and an --info
// flag, since this engine's projects are source trees rather than a
// single configuration file.
type InitCmd struct {
	Starter string `arg:"" optional:"" help:"Starter project name (default: \"default\")."`
	Output  string `short:"o" help:"Directory to write the project into." default:"."`
	Info    bool   `help:"Describe the starter instead of writing it."`
	Force   bool   `help:"Overwrite an existing configuration file."`
}

func (i *InitCmd) Run(_ *Global, root *Root) error {
	starter := LocalStarter{}

	if i.Info {
		desc, err := starter.Describe(i.Starter)
		if err != nil {
			return err
		}
		fmt.Println(desc)
		return nil
	}

	if err := starter.Clone(i.Starter, i.Output); err != nil {
		return err
	}

	cfgPath := filepath.Join(i.Output, root.Config)
	if err := config.Init(cfgPath, i.Force); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	fmt.Printf("initialized project in %s\n", i.Output)
	return nil
}
