// Package snapshot takes private, temporary copies of live browser databases
// so they can be read without touching the file a running browser holds open.
package snapshot

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	scanerrors "github.com/runnerr0/domaintally/internal/errors"
)

// sideSuffixes are SQLite companion files copied alongside the main
// database when present, so committed WAL pages are visible in the copy.
var sideSuffixes = []string{"-wal", "-journal"}

// Snapshot is an exclusively owned temporary copy of a history database.
// Release must be called on every exit path; it is safe to call twice.
type Snapshot struct {
	// Path is the copy to open with a SQL driver.
	Path string

	// Source is the live database the copy was taken from.
	Source string

	files  []string
	logger *slog.Logger
	once   sync.Once
}

// Take copies source into a new file under dir (os.TempDir when empty),
// preserving its mode and modification time. A missing or unreadable source,
// or a copy that cannot complete, returns a CopyError and leaves nothing
// behind.
func Take(source, dir string, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, scanerrors.NewCopy(source, err)
	}
	if info.IsDir() {
		return nil, scanerrors.NewCopy(source, fmt.Errorf("source is a directory"))
	}

	tmp, err := os.CreateTemp(dir, "domaintally-*.sqlite")
	if err != nil {
		return nil, scanerrors.NewCopy(source, fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	tmp.Close()

	s := &Snapshot{
		Path:   tmpPath,
		Source: source,
		files:  []string{tmpPath},
		logger: logger,
	}

	if err := copyFile(source, tmpPath, info); err != nil {
		s.Release()
		return nil, scanerrors.NewCopy(source, err)
	}

	for _, suffix := range sideSuffixes {
		side := source + suffix
		sideInfo, err := os.Stat(side)
		if err != nil || sideInfo.IsDir() {
			continue
		}
		s.files = append(s.files, tmpPath+suffix)
		if err := copyFile(side, tmpPath+suffix, sideInfo); err != nil {
			s.Release()
			return nil, scanerrors.NewCopy(side, err)
		}
	}

	logger.Debug("snapshot taken", "source", source, "path", tmpPath, "bytes", info.Size())
	return s, nil
}

// Release removes the copy and its companion files. Removal failures are
// logged and swallowed.
func (s *Snapshot) Release() {
	s.once.Do(func() {
		for _, f := range s.files {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("remove snapshot file", "source", s.Source, "path", f, "error", err)
			}
		}
	})
}

// copyFile copies src to dst and carries over permission bits and times.
func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy bytes: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// Keep the copy owner-writable so SQLite can open it read-write.
	if err := os.Chmod(dst, info.Mode().Perm()|0600); err != nil {
		return fmt.Errorf("chmod destination: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("chtimes destination: %w", err)
	}
	return nil
}

// With takes a snapshot of source, passes it to fn and releases it when fn
// returns, whatever the outcome.
func With[T any](source, dir string, logger *slog.Logger, fn func(s *Snapshot) (T, error)) (T, error) {
	s, err := Take(source, dir, logger)
	if err != nil {
		var zero T
		return zero, err
	}
	defer s.Release()

	return fn(s)
}
