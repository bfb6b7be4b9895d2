package config

import (
	"strings"

	"github.com/runnerr0/domaintally/internal/domain"
)

// DefaultSensitiveDomains returns registrable domains whose names are
// masked in reports when report.redact_sensitive is set: banking, password
// managers, identity providers, healthcare, government and payroll sites.
func DefaultSensitiveDomains() []string {
	return []string{
		// Banking & Financial
		"chase.com",
		"bankofamerica.com",
		"wellsfargo.com",
		"citi.com",
		"usbank.com",
		"capitalone.com",
		"ally.com",
		"schwab.com",
		"fidelity.com",
		"vanguard.com",
		"etrade.com",
		"robinhood.com",
		"paypal.com",
		"venmo.com",
		"zelle.com",

		// Credit Unions & Regional
		"navyfederal.org",
		"pnc.com",
		"regions.com",
		"truist.com",

		// Password Managers
		"1password.com",
		"lastpass.com",
		"bitwarden.com",
		"dashlane.com",
		"keepersecurity.com",
		"nordpass.com",

		// Authentication & Identity
		"microsoftonline.com",
		"auth0.com",
		"okta.com",
		"onelogin.com",
		"duo.com",
		"id.me",
		"login.gov",

		// Healthcare & Medical
		"mychart.com",
		"anthem.com",
		"cigna.com",
		"aetna.com",
		"uhc.com",
		"kp.org",
		"healthcare.gov",
		"medicare.gov",

		// Government & Tax
		"irs.gov",
		"ssa.gov",
		"hrblock.com",

		// Insurance
		"geico.com",
		"progressive.com",
		"statefarm.com",
		"allstate.com",
		"usaa.com",

		// Crypto & Trading
		"coinbase.com",
		"binance.com",
		"kraken.com",
		"gemini.com",

		// HR & Payroll
		"workday.com",
		"adp.com",
		"gusto.com",
		"paychex.com",
	}
}

// SensitiveSet merges the default list with the configured extras. Entries
// are reduced to their registrable domain so they match report keys; hosts
// with no public suffix are kept lowercased.
func (c *Config) SensitiveSet() map[string]bool {
	set := make(map[string]bool)
	for _, d := range DefaultSensitiveDomains() {
		set[d] = true
	}
	for _, d := range c.Report.SensitiveDomains {
		key := domain.Normalize(d)
		if key == domain.Unknown {
			key = strings.ToLower(strings.TrimSpace(d))
		}
		if key != "" {
			set[key] = true
		}
	}
	return set
}
