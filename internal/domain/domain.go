// Package domain reduces visited URLs to their registrable domain.
package domain

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Unknown is the tally key for URLs with no extractable registrable domain.
const Unknown = ""

// Normalize returns the lowercase registrable domain of rawURL: the label
// directly left of the ICANN public suffix plus that suffix, so
// "https://a.b.example.co.uk/x" becomes "example.co.uk". Private suffixes
// such as "github.io" are not treated as registries. URLs without a host,
// IP hosts, and hosts that are themselves a public suffix yield Unknown.
func Normalize(rawURL string) string {
	host := hostname(rawURL)
	if host == "" || net.ParseIP(host) != nil {
		return Unknown
	}
	if strings.Contains(host, "..") || strings.HasPrefix(host, ".") {
		return Unknown
	}

	suffix := icannSuffix(host)
	if suffix == host {
		return Unknown
	}

	rest := strings.TrimSuffix(host, "."+suffix)
	if rest == host {
		return Unknown
	}
	label := rest[strings.LastIndex(rest, ".")+1:]
	if label == "" {
		return Unknown
	}
	return label + "." + suffix
}

// hostname extracts the lowercased host from rawURL, accepting bare hosts
// like "example.com/path" that carry no scheme.
func hostname(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err == nil && u.Host == "" && !strings.Contains(s, ":") {
		u, err = url.Parse("http://" + s)
	}
	if err != nil || u.Host == "" {
		return ""
	}

	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// icannSuffix returns the longest ICANN public suffix of host, skipping
// privately registered suffixes. Hosts under an unlisted TLD fall back to
// their last label.
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann && strings.Contains(suffix, ".") {
		suffix, icann = publicsuffix.PublicSuffix(suffix[strings.Index(suffix, ".")+1:])
	}
	return suffix
}
