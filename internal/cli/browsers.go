package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/domaintally/internal/browser"
)

// browserJSON is the JSON output structure for one entry of the browsers command.
type browserJSON struct {
	Name     string   `json:"name"`
	Family   string   `json:"family"`
	Running  bool     `json:"running"`
	Profiles []string `json:"profiles"`
}

// Execute implements the go-flags Commander interface for BrowsersCommand.
func (c *BrowsersCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithSession(sess)
}

// executeWithSession lists browsers against a loaded session (for testing).
func (c *BrowsersCommand) executeWithSession(sess *session) error {
	ids := browser.All()
	if len(c.Browser) > 0 {
		parsed, err := browser.ParseList(c.Browser)
		if err != nil {
			return err
		}
		ids = parsed
	}

	running := make(map[browser.Identity]bool)
	live, err := c.deps.gateFor(sess).Running(ids)
	if err != nil {
		sess.logger.Warn("could not read the process list", "error", err)
	}
	for _, id := range live {
		running[id] = true
	}

	roots := c.deps.rootsFor(sess, c.Root)
	loc := c.deps.locatorFor()

	entries := make([]browserJSON, 0, len(ids))
	for _, id := range ids {
		spec, _ := browser.Lookup(id)
		entry := browserJSON{
			Name:     string(id),
			Family:   spec.Family.String(),
			Running:  running[id],
			Profiles: []string{},
		}
		for _, l := range loc.Locate(id, roots) {
			entry.Profiles = append(entry.Profiles, l.Dir)
		}
		entries = append(entries, entry)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		state := "not running"
		if e.Running {
			state = "running"
		}
		fmt.Printf("%-8s %-9s %-12s %s\n", e.Name, e.Family, state, pluralProfiles(len(e.Profiles)))
		for _, p := range e.Profiles {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func pluralProfiles(n int) string {
	if n == 1 {
		return "1 profile"
	}
	return fmt.Sprintf("%d profiles", n)
}
