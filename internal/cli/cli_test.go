package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOnly builds a parser whose commands are parsed but not executed.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, error) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	parser.Options &^= goflags.PrintErrors
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	return globals, cmds, err
}

// emptyConfig writes an empty config file so tests never read the user's own.
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	return path
}

func TestVersionFlag(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := RunWithArgs("0.1.0-test", []string{"--version"})

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	assert.NoError(t, err)
	assert.Contains(t, output, "domaintally 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "domaintally 1.2.3", strings.TrimSpace(output))
}

func TestAllSubcommandsExist(t *testing.T) {
	expected := []string{"report", "browsers", "close", "init"}
	parser, _, _ := buildParser("test")

	for _, name := range expected {
		cmd := parser.Find(name)
		assert.NotNil(t, cmd, "subcommand %q should exist", name)
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	_, _, err := parseOnly(t, "nonexistent")
	require.Error(t, err)
}

func TestHelpFlagDoesNotError(t *testing.T) {
	captureOutput(t, func() {
		err := RunWithArgs("test", []string{"--help"})
		assert.NoError(t, err)
	})
}

func TestReportFlagsDefaults(t *testing.T) {
	_, c, err := parseOnly(t, "report")
	require.NoError(t, err)

	assert.Empty(t, c.Report.Browser)
	assert.Empty(t, c.Report.Window)
	assert.Empty(t, c.Report.Format)
	assert.Equal(t, -1, c.Report.Limit)
	assert.False(t, c.Report.CloseRunning)
	assert.False(t, c.Report.IgnoreRunning)
}

func TestReportFlags(t *testing.T) {
	_, c, err := parseOnly(t, "report",
		"--browser", "chrome", "--browser", "firefox",
		"--window", "30d", "--format", "csv", "--limit", "10",
		"--output", "/tmp/out.csv", "--close-running", "--redact",
		"--root", "/mnt/old")
	require.NoError(t, err)

	assert.Equal(t, []string{"chrome", "firefox"}, c.Report.Browser)
	assert.Equal(t, "30d", c.Report.Window)
	assert.Equal(t, "csv", c.Report.Format)
	assert.Equal(t, 10, c.Report.Limit)
	assert.Equal(t, "/tmp/out.csv", c.Report.Output)
	assert.True(t, c.Report.CloseRunning)
	assert.True(t, c.Report.Redact)
	assert.Equal(t, []string{"/mnt/old"}, c.Report.Root)
}

func TestCloseFlags(t *testing.T) {
	_, c, err := parseOnly(t, "close", "--all")
	require.NoError(t, err)
	assert.True(t, c.Close.All)

	_, c, err = parseOnly(t, "close", "--browser", "edge")
	require.NoError(t, err)
	assert.Equal(t, []string{"edge"}, c.Close.Browser)
}

func TestGlobalFlags(t *testing.T) {
	globals, _, err := parseOnly(t, "--json", "--verbose", "--config", "/tmp/test.yaml", "browsers")
	require.NoError(t, err)
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/test.yaml", globals.Config)
}

func TestCloseRequiresBrowserOrAll(t *testing.T) {
	err := RunWithArgs("test", []string{"--config", emptyConfig(t), "close"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--browser or --all")
}

func TestReportRejectsConflictingRunningFlags(t *testing.T) {
	err := RunWithArgs("test", []string{"--config", emptyConfig(t), "report", "--close-running", "--ignore-running"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  window_days: -4\n"), 0644))

	err := RunWithArgs("test", []string{"--config", path, "browsers"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_days")
}

func TestInitWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	output := captureOutput(t, func() {
		require.NoError(t, RunWithArgs("test", []string{"--config", path, "init"}))
	})
	assert.Contains(t, output, "Wrote default config to "+path)

	// The written file drives the next command.
	err := RunWithArgs("test", []string{"--config", path, "close"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--browser or --all")
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := emptyConfig(t)

	err := RunWithArgs("test", []string{"--config", path, "init"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	captureOutput(t, func() {
		require.NoError(t, RunWithArgs("test", []string{"--config", path, "init", "--force"}))
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "window_days: 90")
}
