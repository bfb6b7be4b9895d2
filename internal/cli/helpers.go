package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/domaintally/internal/browser"
	"github.com/runnerr0/domaintally/internal/config"
	"github.com/runnerr0/domaintally/internal/locator"
	"github.com/runnerr0/domaintally/internal/sentinel"
)

// session is the loaded configuration and logger shared by one command run.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
}

// Close releases the log file, if one was opened.
func (s *session) Close() error {
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}

// openSession loads and validates the config named by --config (or the
// default path) and builds the logger every component receives.
func openSession(globals *GlobalFlags) (*session, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	verbose := globals != nil && globals.Verbose
	sess := &session{cfg: cfg}

	var out io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		path, err := config.ExpandPath(cfg.Logging.File)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sess.logFile = f
		out = f
	}

	sess.logger = newLogger(out, cfg.Logging.Level, verbose)
	return sess, nil
}

func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals == nil || globals.Config == "" {
		return config.LoadDefault()
	}
	path, err := config.ExpandPath(globals.Config)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// newLogger returns a text logger at level; verbose forces debug.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// resolveBrowsers parses the --browser values, falling back to the configured list.
func resolveBrowsers(flagValues []string, cfg *config.Config) ([]browser.Identity, error) {
	names := flagValues
	if len(names) == 0 {
		names = cfg.Scan.Browsers
	}
	return browser.ParseList(names)
}

// gateFor returns the injected process gate or one backed by the process table.
func (p overrides) gateFor(sess *session) processGate {
	if p.gate != nil {
		return p.gate
	}
	grace := time.Duration(sess.cfg.Sentinel.GraceSeconds) * time.Second
	return sentinel.New(sess.logger, sentinel.WithGracePeriod(grace))
}

func (p overrides) locatorFor() *locator.Locator {
	if p.locator != nil {
		return p.locator
	}
	return locator.New()
}

// rootsFor returns the candidate user directories, with extra appended.
func (p overrides) rootsFor(sess *session, extra []string) []string {
	if p.roots != nil {
		return append(append([]string{}, p.roots...), extra...)
	}
	all := append(append([]string{}, sess.cfg.Scan.ExtraRoots...), extra...)
	return locator.DefaultRoots(runtime.GOOS, all)
}

// joinIdentities renders ids as a comma-separated list.
func joinIdentities(ids []browser.Identity) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// parseDuration parses a human-friendly duration string like "90d", "7d", "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "90 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
