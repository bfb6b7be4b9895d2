package browser

import (
	"fmt"
	"strings"
)

// Family determines the history schema dialect and file-naming convention.
type Family int

const (
	ChromiumBased Family = iota
	FirefoxBased
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case ChromiumBased:
		return "chromium"
	case FirefoxBased:
		return "firefox"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Identity is one of the supported browsers.
type Identity string

const (
	Chrome  Identity = "chrome"
	Firefox Identity = "firefox"
	Edge    Identity = "edge"
	Opera   Identity = "opera"
	Brave   Identity = "brave"
)

// History store file names, per family.
const (
	ChromiumHistoryFile = "History"
	FirefoxHistoryFile  = "places.sqlite"
)

// Spec is the static description of a browser identity.
type Spec struct {
	Identity Identity
	Family   Family

	// Processes lists executable names, compared case-insensitively against
	// the live process list.
	Processes []string

	// Paths maps GOOS to the profile path relative to a user root. For the
	// Chromium family it names the profile directory itself; for Firefox it
	// names the directory holding one subdirectory per profile.
	Paths map[string]string
}

// HistoryFile returns the history store file name for the identity's family.
func (s Spec) HistoryFile() string {
	if s.Family == FirefoxBased {
		return FirefoxHistoryFile
	}
	return ChromiumHistoryFile
}

// MultiProfile reports whether the identity keeps several named profiles
// under its relative path.
func (s Spec) MultiProfile() bool {
	return s.Family == FirefoxBased
}

// registry is ordered; All returns identities in this order.
var registry = []Spec{
	{
		Identity:  Chrome,
		Family:    ChromiumBased,
		Processes: []string{"chrome.exe", "googlecrashhandler.exe", "googlecrashhandler64.exe", "chrome", "google chrome"},
		Paths: map[string]string{
			"windows": "AppData/Local/Google/Chrome/User Data/Default",
			"darwin":  "Library/Application Support/Google/Chrome/Default",
			"linux":   ".config/google-chrome/Default",
		},
	},
	{
		Identity:  Firefox,
		Family:    FirefoxBased,
		Processes: []string{"firefox.exe", "firefox", "firefox-bin"},
		Paths: map[string]string{
			"windows": "AppData/Roaming/Mozilla/Firefox/Profiles",
			"darwin":  "Library/Application Support/Firefox/Profiles",
			"linux":   ".mozilla/firefox",
		},
	},
	{
		Identity:  Edge,
		Family:    ChromiumBased,
		Processes: []string{"msedge.exe", "msedge", "microsoft edge"},
		Paths: map[string]string{
			"windows": "AppData/Local/Microsoft/Edge/User Data/Default",
			"darwin":  "Library/Application Support/Microsoft Edge/Default",
			"linux":   ".config/microsoft-edge/Default",
		},
	},
	{
		Identity:  Opera,
		Family:    ChromiumBased,
		Processes: []string{"opera.exe", "opera"},
		Paths: map[string]string{
			"windows": "AppData/Roaming/Opera Software/Opera Stable",
			"darwin":  "Library/Application Support/com.operasoftware.Opera",
			"linux":   ".config/opera",
		},
	},
	{
		Identity:  Brave,
		Family:    ChromiumBased,
		Processes: []string{"brave.exe", "brave", "brave browser"},
		Paths: map[string]string{
			"windows": "AppData/Local/BraveSoftware/Brave-Browser/User Data/Default",
			"darwin":  "Library/Application Support/BraveSoftware/Brave-Browser/Default",
			"linux":   ".config/BraveSoftware/Brave-Browser/Default",
		},
	},
}

// All returns every supported identity in processing order.
func All() []Identity {
	ids := make([]Identity, len(registry))
	for i, s := range registry {
		ids[i] = s.Identity
	}
	return ids
}

// Lookup returns the Spec for id.
func Lookup(id Identity) (Spec, bool) {
	for _, s := range registry {
		if s.Identity == id {
			return s, true
		}
	}
	return Spec{}, false
}

// Parse converts a user-supplied name into an Identity.
func Parse(name string) (Identity, error) {
	id := Identity(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := Lookup(id); !ok {
		return "", fmt.Errorf("unknown browser %q (supported: %s)", name, joinIdentities(All()))
	}
	return id, nil
}

// ParseList converts names into identities, dropping duplicates and keeping
// the registry order.
func ParseList(names []string) ([]Identity, error) {
	want := make(map[Identity]bool, len(names))
	for _, n := range names {
		id, err := Parse(n)
		if err != nil {
			return nil, err
		}
		want[id] = true
	}

	var ids []Identity
	for _, id := range All() {
		if want[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// MatchesProcess reports whether a process name belongs to id.
func MatchesProcess(id Identity, processName string) bool {
	s, ok := Lookup(id)
	if !ok {
		return false
	}
	for _, p := range s.Processes {
		if strings.EqualFold(p, processName) {
			return true
		}
	}
	return false
}

func joinIdentities(ids []Identity) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
