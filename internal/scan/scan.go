// Package scan runs the history extraction pipeline: locate profiles, read
// each one from a private snapshot with retries, and fold the results into a
// ranked domain report.
package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/runnerr0/domaintally/internal/browser"
	"github.com/runnerr0/domaintally/internal/domain"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
	"github.com/runnerr0/domaintally/internal/history"
	"github.com/runnerr0/domaintally/internal/locator"
	"github.com/runnerr0/domaintally/internal/retry"
	"github.com/runnerr0/domaintally/internal/snapshot"
	"github.com/runnerr0/domaintally/internal/tally"
)

// DefaultWindow is the trailing period of history that is counted.
const DefaultWindow = 90 * 24 * time.Hour

// Options carries everything a run needs. There is no package-level state.
type Options struct {
	// Browsers to scan, in processing order.
	Browsers []browser.Identity

	// Roots are candidate user directories probed for profiles.
	Roots []string

	// Window is how far back from now visits are counted.
	Window time.Duration

	// TempDir holds snapshots; os.TempDir when empty.
	TempDir string

	Retry   retry.Policy
	Readers history.Readers
	Locator *locator.Locator

	// Now is consulted once per read attempt.
	Now func() time.Time
}

// ProfileResult is the outcome of reading one profile.
type ProfileResult struct {
	Location locator.Location
	Records  int
	Visits   int64
	Err      error
}

// OK reports whether the profile was read.
func (p ProfileResult) OK() bool {
	return p.Err == nil
}

// Result is the output of a run.
type Result struct {
	Report   tally.Report
	Profiles []ProfileResult
}

// Failed returns the profiles that could not be read.
func (r *Result) Failed() []ProfileResult {
	var failed []ProfileResult
	for _, p := range r.Profiles {
		if !p.OK() {
			failed = append(failed, p)
		}
	}
	return failed
}

// Scanner runs the pipeline. It is single-threaded: profiles are read one at
// a time in the order the locator yields them.
type Scanner struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts, fills defaults and returns a Scanner.
func New(opts Options, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Window < 0 {
		return nil, scanerrors.NewInvalidConfig(fmt.Sprintf("window must not be negative, got %s", opts.Window))
	}
	if opts.Window == 0 {
		opts.Window = DefaultWindow
	}
	if opts.Browsers == nil {
		opts.Browsers = browser.All()
	}
	for _, id := range opts.Browsers {
		if _, ok := browser.Lookup(id); !ok {
			return nil, scanerrors.NewInvalidConfig(fmt.Sprintf("unknown browser %q", id))
		}
	}
	if opts.Readers == nil {
		opts.Readers = history.NewReaders(history.EpochUnix, history.EpochUnix)
	}
	if opts.Locator == nil {
		opts.Locator = locator.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// A zero delay is honoured when the attempt count was set explicitly.
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry.MaxAttempts = retry.DefaultMaxAttempts
		if opts.Retry.Delay == 0 {
			opts.Retry.Delay = retry.DefaultDelay
		}
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = logger
	}

	return &Scanner{opts: opts, logger: logger}, nil
}

// Locate returns the profiles the run would read.
func (s *Scanner) Locate() []locator.Location {
	return s.opts.Locator.LocateAll(s.opts.Browsers, s.opts.Roots)
}

// Run reads every located profile and aggregates the visits. A failed
// profile is recorded in the result and contributes nothing; only a missing
// set of roots or a cancelled context fails the run.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	if len(s.opts.Roots) == 0 {
		return nil, scanerrors.NewNoRoots()
	}

	locs := s.Locate()
	s.logger.Info("profiles located", "count", len(locs), "roots", len(s.opts.Roots))

	t := tally.New()
	res := &Result{}
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := s.ReadProfile(ctx, loc)
		pr := ProfileResult{Location: loc, Err: err}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Error("skipping profile",
				"browser", loc.Browser, "profile", loc.Dir, "kind", scanerrors.CodeOf(err), "error", err)
		} else {
			t.Fold(records)
			pr.Records = len(records)
			for _, r := range records {
				pr.Visits += r.VisitCount
			}
			s.logger.Debug("profile read", "browser", loc.Browser, "profile", loc.Dir, "records", pr.Records)
		}
		res.Profiles = append(res.Profiles, pr)
	}

	res.Report = t.Rank()
	s.logger.Info("scan complete",
		"profiles", len(res.Profiles), "failed", len(res.Failed()),
		"domains", t.Len(), "unparsed_visits", t.Count(domain.Unknown))
	return res, nil
}

// ReadProfile snapshots one profile's history database and reads it, with
// the retry policy wrapped around both steps. Each attempt takes a fresh
// snapshot and releases it before returning.
func (s *Scanner) ReadProfile(ctx context.Context, loc locator.Location) ([]history.VisitRecord, error) {
	reader, err := s.opts.Readers.For(loc.Family)
	if err != nil {
		return nil, err
	}

	return retry.Do(ctx, s.opts.Retry, func(ctx context.Context) ([]history.VisitRecord, error) {
		return snapshot.With(loc.HistoryPath(), s.opts.TempDir, s.logger,
			func(snap *snapshot.Snapshot) ([]history.VisitRecord, error) {
				since := s.opts.Now().Add(-s.opts.Window)
				return reader.Read(ctx, snap.Path, since)
			})
	})
}
