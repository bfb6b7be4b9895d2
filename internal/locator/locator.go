// Package locator finds the browser profile directories to scan under a set
// of candidate user roots.
package locator

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/runnerr0/domaintally/internal/browser"
)

// Location is one browsing profile of one browser.
type Location struct {
	Browser browser.Identity
	Family  browser.Family
	Dir     string
}

// HistoryPath is the live history database inside the profile.
func (l Location) HistoryPath() string {
	s, _ := browser.Lookup(l.Browser)
	return filepath.Join(l.Dir, s.HistoryFile())
}

// Name is the profile directory's base name, used in logs and summaries.
func (l Location) Name() string {
	return filepath.Base(l.Dir)
}

// Locator probes candidate roots for profile directories.
type Locator struct {
	goos string
}

// New returns a Locator for the running operating system.
func New() *Locator {
	return &Locator{goos: runtime.GOOS}
}

// NewForOS returns a Locator using the path table of goos.
func NewForOS(goos string) *Locator {
	return &Locator{goos: goos}
}

// Locate returns the profiles of id found under roots. Roots are probed in
// order and the first one holding the browser's path wins; later roots are
// not consulted. Chromium-family browsers yield their single profile
// directory. Firefox yields every immediate subdirectory of its profiles
// root, sorted by name. Nothing found is not an error.
func (l *Locator) Locate(id browser.Identity, roots []string) []Location {
	spec, ok := browser.Lookup(id)
	if !ok {
		return nil
	}
	rel, ok := spec.Paths[l.goos]
	if !ok {
		return nil
	}

	for _, root := range roots {
		if root == "" {
			continue
		}
		dir := filepath.Join(root, filepath.FromSlash(rel))
		if !isDir(dir) {
			continue
		}

		if !spec.MultiProfile() {
			return []Location{{Browser: id, Family: spec.Family, Dir: dir}}
		}
		return subdirectories(spec, dir)
	}
	return nil
}

// LocateAll runs Locate for each identity in order and concatenates the
// results. Identities with no profile are absent.
func (l *Locator) LocateAll(ids []browser.Identity, roots []string) []Location {
	var all []Location
	for _, id := range ids {
		all = append(all, l.Locate(id, roots)...)
	}
	return all
}

func subdirectories(spec browser.Spec, dir string) []Location {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var locs []Location
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !isDir(path) {
			continue
		}
		locs = append(locs, Location{Browser: spec.Identity, Family: spec.Family, Dir: path})
	}
	return locs
}

// isDir follows symlinks.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
