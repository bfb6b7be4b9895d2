// Package tally folds visit records into per-domain totals and ranks them.
package tally

import (
	"sort"

	"github.com/runnerr0/domaintally/internal/domain"
	"github.com/runnerr0/domaintally/internal/history"
)

// DomainCount pairs a registrable domain with its cumulative visit count.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"visits"`
}

// Report is a ranking of domains by descending visit count.
type Report []DomainCount

// Tally accumulates visit counts by normalized domain for a single run. It
// remembers the order in which domains were first seen to break ties.
type Tally struct {
	counts    map[string]int64
	order     []string
	normalize func(string) string
}

// New returns an empty Tally keyed by domain.Normalize.
func New() *Tally {
	return &Tally{
		counts:    make(map[string]int64),
		normalize: domain.Normalize,
	}
}

// Fold adds every record's visit count to its domain's total.
func (t *Tally) Fold(records []history.VisitRecord) {
	for _, r := range records {
		t.Add(t.normalize(r.URL), r.VisitCount)
	}
}

// Add adds n visits to key. Negative counts are treated as zero.
func (t *Tally) Add(key string, n int64) {
	if n < 0 {
		n = 0
	}
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key] += n
}

// Count returns the total for key.
func (t *Tally) Count(key string) int64 {
	return t.counts[key]
}

// Len returns the number of distinct domains.
func (t *Tally) Len() int {
	return len(t.order)
}

// Rank returns the totals sorted by count descending. Domains with equal
// counts keep the order in which they were first folded.
func (t *Tally) Rank() Report {
	report := make(Report, len(t.order))
	for i, key := range t.order {
		report[i] = DomainCount{Domain: key, Count: t.counts[key]}
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Count > report[j].Count
	})
	return report
}

// Top returns at most n entries; n <= 0 returns the whole report.
func (r Report) Top(n int) Report {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// Total returns the sum of all counts.
func (r Report) Total() int64 {
	var total int64
	for _, dc := range r {
		total += dc.Count
	}
	return total
}
