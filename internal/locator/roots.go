package locator

import (
	"os"
	"path/filepath"
)

// Env looks up an environment variable.
type Env func(key string) string

// CandidateRoots derives the user directories to probe: USERPROFILE, the
// home directory, and C:\Users\<USERNAME>, followed by extra. Empty and
// repeated entries are dropped; order is preserved.
func CandidateRoots(getenv Env, home string, goos string, extra []string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}

	var candidates []string
	candidates = append(candidates, getenv("USERPROFILE"), home)
	if goos == "windows" {
		if user := getenv("USERNAME"); user != "" {
			drive := getenv("SystemDrive")
			if drive == "" {
				drive = "C:"
			}
			candidates = append(candidates, drive+`\Users\`+user)
		}
	}
	candidates = append(candidates, extra...)

	seen := make(map[string]bool, len(candidates))
	var roots []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		c = filepath.Clean(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		roots = append(roots, c)
	}
	return roots
}

// DefaultRoots returns CandidateRoots for the current process environment.
func DefaultRoots(goos string, extra []string) []string {
	home, _ := os.UserHomeDir()
	return CandidateRoots(os.Getenv, home, goos, extra)
}
