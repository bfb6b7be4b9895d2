package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/domaintally/internal/browser"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
	"github.com/runnerr0/domaintally/internal/history"
)

// Default config file path.
const DefaultConfigPath = "~/.config/domaintally/config.yaml"

// Config holds all domaintally configuration.
type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Retry    RetryConfig    `yaml:"retry"`
	Sentinel SentinelConfig `yaml:"sentinel"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ScanConfig struct {
	Browsers      []string `yaml:"browsers"`
	WindowDays    int      `yaml:"window_days"`
	ExtraRoots    []string `yaml:"extra_roots"`
	TempDir       string   `yaml:"temp_dir"`
	ChromiumEpoch string   `yaml:"chromium_epoch"`
	FirefoxEpoch  string   `yaml:"firefox_epoch"`
}

type RetryConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

type SentinelConfig struct {
	// OnRunning is one of abort, close, ignore.
	OnRunning    string `yaml:"on_running"`
	GraceSeconds int    `yaml:"grace_seconds"`
}

type ReportConfig struct {
	Format           string   `yaml:"format"`
	Limit            int      `yaml:"limit"`
	Output           string   `yaml:"output"`
	RedactSensitive  bool     `yaml:"redact_sensitive"`
	SensitiveDomains []string `yaml:"sensitive_domains"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Accepted values for enumerated settings.
var (
	OnRunningModes = []string{"abort", "close", "ignore"}
	ReportFormats  = []string{"table", "json", "csv"}
	LogLevels      = []string{"debug", "info", "warn", "error"}
)

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadDefault loads the config from the default path, falling back to
// defaults when the file does not exist. Nothing is written to disk.
func LoadDefault() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadIfExists(path)
}

// LoadIfExists loads path when it exists and returns defaults otherwise.
func LoadIfExists(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// defaultHeader opens every config file written by WriteDefault.
const defaultHeader = "# domaintally configuration. Keys left out fall back to their defaults.\n"

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if _, err := browser.ParseList(c.Scan.Browsers); err != nil {
		return scanerrors.NewInvalidConfig(err.Error())
	}
	if len(c.Scan.Browsers) == 0 {
		return scanerrors.NewInvalidConfig("scan.browsers must name at least one browser")
	}
	if c.Scan.WindowDays <= 0 {
		return scanerrors.NewInvalidConfig(fmt.Sprintf("scan.window_days must be positive, got %d", c.Scan.WindowDays))
	}
	if _, err := history.ParseEpoch(c.Scan.ChromiumEpoch); err != nil {
		return scanerrors.NewInvalidConfig("scan.chromium_epoch: " + err.Error())
	}
	if _, err := history.ParseEpoch(c.Scan.FirefoxEpoch); err != nil {
		return scanerrors.NewInvalidConfig("scan.firefox_epoch: " + err.Error())
	}
	if c.Retry.MaxAttempts < 1 {
		return scanerrors.NewInvalidConfig(fmt.Sprintf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.DelaySeconds < 0 {
		return scanerrors.NewInvalidConfig("retry.delay_seconds must not be negative")
	}
	if c.Sentinel.GraceSeconds < 0 {
		return scanerrors.NewInvalidConfig("sentinel.grace_seconds must not be negative")
	}
	if !oneOf(c.Sentinel.OnRunning, OnRunningModes) {
		return scanerrors.NewInvalidConfig(fmt.Sprintf("sentinel.on_running must be one of %s, got %q",
			strings.Join(OnRunningModes, ", "), c.Sentinel.OnRunning))
	}
	if !oneOf(c.Report.Format, ReportFormats) {
		return scanerrors.NewInvalidConfig(fmt.Sprintf("report.format must be one of %s, got %q",
			strings.Join(ReportFormats, ", "), c.Report.Format))
	}
	if c.Report.Limit < 0 {
		return scanerrors.NewInvalidConfig("report.limit must not be negative")
	}
	if !oneOf(c.Logging.Level, LogLevels) {
		return scanerrors.NewInvalidConfig(fmt.Sprintf("logging.level must be one of %s, got %q",
			strings.Join(LogLevels, ", "), c.Logging.Level))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
