package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Browsers:      []string{"chrome", "firefox", "edge", "opera", "brave"},
			WindowDays:    90,
			ExtraRoots:    []string{},
			TempDir:       "",
			ChromiumEpoch: "unix",
			FirefoxEpoch:  "unix",
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			DelaySeconds: 5,
		},
		Sentinel: SentinelConfig{
			OnRunning:    "abort",
			GraceSeconds: 2,
		},
		Report: ReportConfig{
			Format:           "table",
			Limit:            0,
			Output:           "",
			RedactSensitive:  false,
			SensitiveDomains: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
