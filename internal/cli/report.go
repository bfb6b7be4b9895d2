package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/runnerr0/domaintally/internal/browser"
	"github.com/runnerr0/domaintally/internal/config"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
	"github.com/runnerr0/domaintally/internal/history"
	"github.com/runnerr0/domaintally/internal/retry"
	"github.com/runnerr0/domaintally/internal/scan"
	"github.com/runnerr0/domaintally/internal/tally"
)

// redactedLabel replaces sensitive domain names in reports.
const redactedLabel = "[redacted]"

// reportJSON is the JSON output structure for the report command.
type reportJSON struct {
	Version     string        `json:"version"`
	GeneratedAt string        `json:"generated_at"`
	WindowDays  int           `json:"window_days"`
	TotalVisits int64         `json:"total_visits"`
	Domains     tally.Report  `json:"domains"`
	Profiles    []profileJSON `json:"profiles"`
}

type profileJSON struct {
	Browser string `json:"browser"`
	Profile string `json:"profile"`
	Records int    `json:"records"`
	Visits  int64  `json:"visits"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// reportSettings is the merge of flags over config for one run.
type reportSettings struct {
	browsers  []browser.Identity
	window    time.Duration
	format    string
	limit     int
	output    string
	onRunning string
	redact    bool
}

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.executeWithSession(ctx, sess)
}

// executeWithSession runs the report against a loaded session (for testing).
func (c *ReportCommand) executeWithSession(ctx context.Context, sess *session) error {
	settings, err := c.settings(sess.cfg)
	if err != nil {
		return err
	}

	if err := gateRunning(c.deps.gateFor(sess), settings.onRunning, settings.browsers, sess.logger); err != nil {
		return err
	}

	chromiumEpoch, err := history.ParseEpoch(sess.cfg.Scan.ChromiumEpoch)
	if err != nil {
		return fmt.Errorf("scan.chromium_epoch: %w", err)
	}
	firefoxEpoch, err := history.ParseEpoch(sess.cfg.Scan.FirefoxEpoch)
	if err != nil {
		return fmt.Errorf("scan.firefox_epoch: %w", err)
	}

	scanner, err := scan.New(scan.Options{
		Browsers: settings.browsers,
		Roots:    c.deps.rootsFor(sess, c.Root),
		Window:   settings.window,
		TempDir:  sess.cfg.Scan.TempDir,
		Retry: retry.Policy{
			MaxAttempts: sess.cfg.Retry.MaxAttempts,
			Delay:       time.Duration(sess.cfg.Retry.DelaySeconds) * time.Second,
			Logger:      sess.logger,
		},
		Readers: history.NewReaders(chromiumEpoch, firefoxEpoch),
		Locator: c.deps.locatorFor(),
	}, sess.logger)
	if err != nil {
		return err
	}

	res, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	report := res.Report
	if settings.redact {
		report = redact(report, sess.cfg.SensitiveSet())
	}
	report = report.Top(settings.limit)

	out := io.Writer(os.Stdout)
	if settings.output != "" {
		path, err := config.ExpandPath(settings.output)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch settings.format {
	case "json":
		err = c.printJSON(out, res, report, settings.window)
	case "csv":
		err = printCSV(out, report)
	default:
		err = printTable(out, report, settings.window)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if settings.output != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", settings.output)
	}
	printProfileSummary(os.Stderr, res)
	return nil
}

// settings merges the command's flags over the loaded config.
func (c *ReportCommand) settings(cfg *config.Config) (reportSettings, error) {
	s := reportSettings{
		window:    time.Duration(cfg.Scan.WindowDays) * 24 * time.Hour,
		format:    strings.ToLower(cfg.Report.Format),
		limit:     cfg.Report.Limit,
		output:    cfg.Report.Output,
		onRunning: strings.ToLower(cfg.Sentinel.OnRunning),
		redact:    cfg.Report.RedactSensitive || c.Redact,
	}

	ids, err := resolveBrowsers(c.Browser, cfg)
	if err != nil {
		return s, err
	}
	s.browsers = ids

	if c.Window != "" {
		d, err := parseDuration(c.Window)
		if err != nil {
			return s, err
		}
		s.window = d
	}

	if c.Format != "" {
		s.format = strings.ToLower(c.Format)
	}
	if c.globals != nil && c.globals.JSON {
		s.format = "json"
	}
	if !oneOf(s.format, config.ReportFormats) {
		return s, fmt.Errorf("invalid format %q (use table, json, or csv)", s.format)
	}

	if c.Limit >= 0 {
		s.limit = c.Limit
	}
	if c.Output != "" {
		s.output = c.Output
	}

	switch {
	case c.CloseRunning && c.IgnoreRunning:
		return s, fmt.Errorf("--close-running and --ignore-running are mutually exclusive")
	case c.CloseRunning:
		s.onRunning = "close"
	case c.IgnoreRunning:
		s.onRunning = "ignore"
	}

	return s, nil
}

// gateRunning applies the running-browser policy before any file is read.
func gateRunning(gate processGate, mode string, ids []browser.Identity, logger *slog.Logger) error {
	if mode == "ignore" {
		return nil
	}

	running, err := gate.Running(ids)
	if err != nil {
		logger.Warn("could not read the process list; continuing", "error", err)
		return nil
	}
	if len(running) == 0 {
		return nil
	}

	if mode != "close" {
		return fmt.Errorf("browsers still running: %s; close them manually or pass --close-running",
			joinIdentities(running))
	}

	logger.Info("closing running browsers", "browsers", joinIdentities(running))
	results, err := gate.Close(running)
	if err != nil {
		return fmt.Errorf("close browsers: %w", err)
	}
	for _, r := range results {
		for _, f := range r.Failures {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", f)
		}
	}
	return nil
}

// redact masks every domain found in sensitive, keeping its count and rank.
func redact(report tally.Report, sensitive map[string]bool) tally.Report {
	out := make(tally.Report, len(report))
	for i, dc := range report {
		out[i] = dc
		if sensitive[dc.Domain] {
			out[i].Domain = redactedLabel
		}
	}
	return out
}

func printTable(w io.Writer, report tally.Report, window time.Duration) error {
	if len(report) == 0 {
		_, err := fmt.Fprintf(w, "No visits found in the last %s.\n", formatDurationHuman(window))
		return err
	}

	// fmt pads by rune, so IDN hosts are measured the same way.
	width := utf8.RuneCountInString("DOMAIN")
	for _, dc := range report {
		if n := utf8.RuneCountInString(displayDomain(dc.Domain)); n > width {
			width = n
		}
	}

	fmt.Fprintf(w, "%-*s  %10s\n", width, "DOMAIN", "VISITS")
	for _, dc := range report {
		fmt.Fprintf(w, "%-*s  %10s\n", width, displayDomain(dc.Domain), formatNumber(dc.Count))
	}
	_, err := fmt.Fprintf(w, "\n%d domains, %s visits in the last %s\n",
		len(report), formatNumber(report.Total()), formatDurationHuman(window))
	return err
}

// displayDomain renders the placeholder for unparseable URLs.
func displayDomain(d string) string {
	if d == "" {
		return "(unknown)"
	}
	return d
}

func (c *ReportCommand) printJSON(w io.Writer, res *scan.Result, report tally.Report, window time.Duration) error {
	out := reportJSON{
		Version:     c.version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		WindowDays:  int(window.Hours() / 24),
		TotalVisits: report.Total(),
		Domains:     report,
		Profiles:    make([]profileJSON, len(res.Profiles)),
	}
	if out.Domains == nil {
		out.Domains = tally.Report{}
	}

	for i, p := range res.Profiles {
		pj := profileJSON{
			Browser: string(p.Location.Browser),
			Profile: p.Location.Dir,
			Records: p.Records,
			Visits:  p.Visits,
		}
		if p.Err != nil {
			pj.Error = p.Err.Error()
			pj.Kind = string(scanerrors.CodeOf(p.Err))
		}
		out.Profiles[i] = pj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printCSV(w io.Writer, report tally.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"domain", "visits"}); err != nil {
		return err
	}
	for _, dc := range report {
		if err := cw.Write([]string{dc.Domain, strconv.FormatInt(dc.Count, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// printProfileSummary lists how each located profile fared.
func printProfileSummary(w io.Writer, res *scan.Result) {
	if len(res.Profiles) == 0 {
		fmt.Fprintln(w, "No browser profiles found.")
		return
	}
	failed := res.Failed()
	fmt.Fprintf(w, "Profiles: %d read, %d skipped\n", len(res.Profiles)-len(failed), len(failed))
	for _, p := range failed {
		fmt.Fprintf(w, "  %-8s %-24s %s\n", p.Location.Browser, p.Location.Name(), scanerrors.CodeOf(p.Err))
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
