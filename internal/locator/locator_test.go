package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/domaintally/internal/browser"
)

func mkdirAll(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func TestLocate_FirefoxEnumeratesProfileDirectories(t *testing.T) {
	root := t.TempDir()
	profiles := mkdirAll(t, root, ".mozilla", "firefox")
	mkdirAll(t, profiles, "default-release")
	mkdirAll(t, profiles, "profile2")
	require.NoError(t, os.WriteFile(filepath.Join(profiles, "a_file.txt"), []byte("x"), 0644))

	locs := NewForOS("linux").Locate(browser.Firefox, []string{root})

	require.Len(t, locs, 2)
	assert.Equal(t, filepath.Join(profiles, "default-release"), locs[0].Dir)
	assert.Equal(t, filepath.Join(profiles, "profile2"), locs[1].Dir)
	for _, l := range locs {
		assert.Equal(t, browser.Firefox, l.Browser)
		assert.Equal(t, browser.FirefoxBased, l.Family)
	}
	assert.Equal(t, filepath.Join(profiles, "profile2", "places.sqlite"), locs[1].HistoryPath())
	assert.Equal(t, "default-release", locs[0].Name())
}

func TestLocate_ChromiumSingleProfile(t *testing.T) {
	root := t.TempDir()
	dir := mkdirAll(t, root, "AppData", "Local", "Google", "Chrome", "User Data", "Default")
	mkdirAll(t, root, "AppData", "Local", "Google", "Chrome", "User Data", "Profile 1")

	locs := NewForOS("windows").Locate(browser.Chrome, []string{root})

	require.Len(t, locs, 1)
	assert.Equal(t, dir, locs[0].Dir)
	assert.Equal(t, browser.ChromiumBased, locs[0].Family)
	assert.Equal(t, filepath.Join(dir, "History"), locs[0].HistoryPath())
}

func TestLocate_FirstExistingRootWins(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nobody")
	first := t.TempDir()
	second := t.TempDir()
	want := mkdirAll(t, first, ".config", "google-chrome", "Default")
	mkdirAll(t, second, ".config", "google-chrome", "Default")

	locs := NewForOS("linux").Locate(browser.Chrome, []string{"", missing, first, second})

	require.Len(t, locs, 1)
	assert.Equal(t, want, locs[0].Dir)
}

func TestLocate_FirefoxDoesNotMergeRoots(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	mkdirAll(t, first, ".mozilla", "firefox", "abc.default")
	mkdirAll(t, second, ".mozilla", "firefox", "xyz.default")

	locs := NewForOS("linux").Locate(browser.Firefox, []string{first, second})

	require.Len(t, locs, 1)
	assert.Equal(t, "abc.default", locs[0].Name())
}

func TestLocate_FirefoxEmptyProfilesRoot(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, root, ".mozilla", "firefox")

	assert.Empty(t, NewForOS("linux").Locate(browser.Firefox, []string{root}))
}

func TestLocate_NothingFound(t *testing.T) {
	root := t.TempDir()
	l := NewForOS("linux")

	for _, id := range browser.All() {
		assert.Empty(t, l.Locate(id, []string{root}), "%s", id)
	}
	assert.Empty(t, l.Locate(browser.Chrome, nil))
}

func TestLocate_PathIsFileNotDirectory(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, root, ".config", "google-chrome")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".config", "google-chrome", "Default"), []byte("x"), 0644))

	assert.Empty(t, NewForOS("linux").Locate(browser.Chrome, []string{root}))
}

func TestLocate_UnknownOSOrBrowser(t *testing.T) {
	root := t.TempDir()
	assert.Empty(t, NewForOS("plan9").Locate(browser.Chrome, []string{root}))
	assert.Empty(t, NewForOS("linux").Locate("netscape", []string{root}))
}

func TestLocateAll_OrderFollowsIdentities(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, root, ".config", "BraveSoftware", "Brave-Browser", "Default")
	mkdirAll(t, root, ".config", "google-chrome", "Default")
	mkdirAll(t, root, ".mozilla", "firefox", "p1")
	mkdirAll(t, root, ".mozilla", "firefox", "p2")

	locs := NewForOS("linux").LocateAll(browser.All(), []string{root})

	var got []string
	for _, l := range locs {
		got = append(got, string(l.Browser)+"/"+l.Name())
	}
	assert.Equal(t, []string{"chrome/Default", "firefox/p1", "firefox/p2", "brave/Default"}, got)
}
