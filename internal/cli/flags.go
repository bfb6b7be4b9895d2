package cli

import (
	"github.com/runnerr0/domaintally/internal/browser"
	"github.com/runnerr0/domaintally/internal/locator"
	"github.com/runnerr0/domaintally/internal/sentinel"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// processGate is the part of the sentinel the commands use.
type processGate interface {
	Running(ids []browser.Identity) ([]browser.Identity, error)
	Close(ids []browser.Identity) ([]*sentinel.TerminationResult, error)
}

// overrides carries injectable collaborators; zero values mean the real system.
type overrides struct {
	gate    processGate
	locator *locator.Locator
	roots   []string
}

// ReportCommand scans browser history and prints the ranked domain table.
type ReportCommand struct {
	Browser       []string `long:"browser" description:"Browser to scan (repeatable; default from config)"`
	Window        string   `long:"window" description:"Trailing window to count (e.g., 90d, 2w, 12h)"`
	Format        string   `long:"format" description:"Output format: table | json | csv"`
	Limit         int      `long:"limit" description:"Show only the top N domains (0 = all)" default:"-1"`
	Output        string   `long:"output" description:"Write the report to this file instead of stdout"`
	Root          []string `long:"root" description:"Additional user directory to search for profiles (repeatable)"`
	CloseRunning  bool     `long:"close-running" description:"Terminate running browsers before scanning"`
	IgnoreRunning bool     `long:"ignore-running" description:"Scan even if browsers are running"`
	Redact        bool     `long:"redact" description:"Mask sensitive domains (banking, health, identity) in the report"`

	globals *GlobalFlags
	version string
	deps    overrides
}

// BrowsersCommand lists supported browsers, located profiles and running state.
type BrowsersCommand struct {
	Browser []string `long:"browser" description:"Browser to show (repeatable; default all)"`
	Root    []string `long:"root" description:"Additional user directory to search for profiles (repeatable)"`

	globals *GlobalFlags
	version string
	deps    overrides
}

// CloseCommand terminates running browser processes.
type CloseCommand struct {
	Browser []string `long:"browser" description:"Browser to close (repeatable)"`
	All     bool     `long:"all" description:"Close every running supported browser"`

	globals *GlobalFlags
	version string
	deps    overrides
}

// InitCommand writes the default config file.
type InitCommand struct {
	Force bool `long:"force" description:"Overwrite an existing config file"`

	globals *GlobalFlags
}
