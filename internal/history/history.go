// Package history reads visited URLs and their visit counts out of snapshot
// copies of browser history databases.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/runnerr0/domaintally/internal/browser"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
)

// VisitRecord is one visited URL and how many times it was visited.
type VisitRecord struct {
	URL        string `db:"url"`
	VisitCount int64  `db:"visit_count"`
}

// Epoch is the origin of a family's microsecond timestamp column.
type Epoch string

const (
	// EpochUnix counts microseconds from 1970-01-01 UTC.
	EpochUnix Epoch = "unix"
	// EpochWebKit counts microseconds from 1601-01-01 UTC.
	EpochWebKit Epoch = "webkit"
)

// webkitOffset is the number of microseconds between 1601-01-01 and 1970-01-01.
const webkitOffset int64 = 11644473600 * 1_000_000

// ParseEpoch validates a configured epoch name.
func ParseEpoch(s string) (Epoch, error) {
	switch Epoch(strings.ToLower(s)) {
	case EpochUnix, "":
		return EpochUnix, nil
	case EpochWebKit:
		return EpochWebKit, nil
	default:
		return "", fmt.Errorf("unknown epoch %q (use unix or webkit)", s)
	}
}

// Micros converts t into microseconds since the epoch.
func (e Epoch) Micros(t time.Time) int64 {
	us := t.UnixMicro()
	if e == EpochWebKit {
		us += webkitOffset
	}
	return us
}

// Reader extracts visit records from a snapshot file, keeping only rows last
// visited after since.
type Reader interface {
	Read(ctx context.Context, path string, since time.Time) ([]VisitRecord, error)
}

// Queries select (url, visit_count) rows whose last visit is newer than the
// bound microsecond timestamp.
const (
	chromiumQuery = `
		SELECT COALESCE(url, '') AS url, COALESCE(visit_count, 0) AS visit_count
		FROM urls
		WHERE last_visit_time > ?
	`
	firefoxQuery = `
		SELECT COALESCE(url, '') AS url, COALESCE(visit_count, 0) AS visit_count
		FROM moz_places
		WHERE last_visit_date > ?
	`
)

// ChromiumReader reads the urls table of a Chromium-family History file.
type ChromiumReader struct {
	Epoch Epoch
}

// Read implements Reader.
func (r ChromiumReader) Read(ctx context.Context, path string, since time.Time) ([]VisitRecord, error) {
	return query(ctx, path, chromiumQuery, r.Epoch.Micros(since))
}

// FirefoxReader reads the moz_places table of a Firefox places.sqlite file.
type FirefoxReader struct {
	Epoch Epoch
}

// Read implements Reader.
func (r FirefoxReader) Read(ctx context.Context, path string, since time.Time) ([]VisitRecord, error) {
	return query(ctx, path, firefoxQuery, r.Epoch.Micros(since))
}

// Readers maps each browser family to the Reader for its schema.
type Readers map[browser.Family]Reader

// NewReaders builds the family lookup table with the given epochs.
func NewReaders(chromiumEpoch, firefoxEpoch Epoch) Readers {
	return Readers{
		browser.ChromiumBased: ChromiumReader{Epoch: chromiumEpoch},
		browser.FirefoxBased:  FirefoxReader{Epoch: firefoxEpoch},
	}
}

// For returns the reader registered for family.
func (rs Readers) For(family browser.Family) (Reader, error) {
	r, ok := rs[family]
	if !ok {
		return nil, fmt.Errorf("no history reader for family %s", family)
	}
	return r, nil
}

// query opens path, runs stmt with the cutoff and scans every row. Driver
// failures come back as LockedError or QueryError.
func query(ctx context.Context, path, stmt string, cutoff int64) ([]VisitRecord, error) {
	db, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	records := []VisitRecord{}
	if err := db.SelectContext(ctx, &records, stmt, cutoff); err != nil {
		return nil, classify(path, err)
	}

	for i := range records {
		if records[i].VisitCount < 0 {
			records[i].VisitCount = 0
		}
	}
	return records, nil
}

// classify turns a driver error into a LockedError or QueryError. The
// SQLite result code decides when the driver exposes one; the message is
// only consulted otherwise.
func classify(path string, err error) error {
	if IsLocked(err) {
		return scanerrors.NewLocked(path, err)
	}
	return scanerrors.NewQuery(path, err)
}

// IsLocked reports whether err means another connection holds the database.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	if locked, ok := lockCode(err); ok {
		return locked
	}
	return strings.Contains(strings.ToLower(err.Error()), "database is locked")
}
