package cli

import (
	"fmt"

	"github.com/runnerr0/domaintally/internal/browser"
)

// Execute implements the go-flags Commander interface for CloseCommand.
func (c *CloseCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithSession(sess)
}

// executeWithSession terminates browsers against a loaded session (for testing).
func (c *CloseCommand) executeWithSession(sess *session) error {
	var ids []browser.Identity
	switch {
	case c.All && len(c.Browser) > 0:
		return fmt.Errorf("--all and --browser are mutually exclusive")
	case c.All:
		ids = browser.All()
	case len(c.Browser) > 0:
		parsed, err := browser.ParseList(c.Browser)
		if err != nil {
			return err
		}
		ids = parsed
	default:
		return fmt.Errorf("specify at least one --browser or --all")
	}

	gate := c.deps.gateFor(sess)
	running, err := gate.Running(ids)
	if err != nil {
		return fmt.Errorf("read process list: %w", err)
	}
	if len(running) == 0 {
		fmt.Println("No matching browsers are running.")
		return nil
	}

	results, err := gate.Close(running)
	if err != nil {
		return fmt.Errorf("close browsers: %w", err)
	}

	for _, r := range results {
		fmt.Printf("%-8s terminated %d, already exited %d", r.Browser, r.Terminated, r.Gone)
		if len(r.Failures) > 0 {
			fmt.Printf(", failed %d", len(r.Failures))
		}
		fmt.Println()
		for _, f := range r.Failures {
			fmt.Printf("  warning: %v\n", f)
		}
	}
	return nil
}
