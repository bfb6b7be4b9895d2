package cli

import (
	"fmt"

	"github.com/runnerr0/domaintally/internal/config"
)

// Execute implements the go-flags Commander interface for InitCommand.
func (c *InitCommand) Execute(args []string) error {
	path := config.DefaultConfigPath
	if c.globals != nil && c.globals.Config != "" {
		path = c.globals.Config
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	if err := config.WriteDefault(expanded, c.Force); err != nil {
		if !c.Force {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}

	fmt.Printf("Wrote default config to %s\n", expanded)
	return nil
}
