// Package sentinel inspects the process list for running browsers and asks
// them to exit so their history databases are released.
package sentinel

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/runnerr0/domaintally/internal/browser"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
)

// DefaultGracePeriod is how long Close waits after requesting termination.
const DefaultGracePeriod = 2 * time.Second

// Process is the part of a live process the sentinel needs.
type Process interface {
	PID() int32
	Name() (string, error)
	Terminate() error
}

// Lister returns a snapshot of the live process list.
type Lister func() ([]Process, error)

// Sentinel matches live processes against browser executable names.
type Sentinel struct {
	list   Lister
	grace  time.Duration
	sleep  func(time.Duration)
	logger *slog.Logger
}

// Option configures a Sentinel.
type Option func(*Sentinel)

// WithLister replaces the gopsutil process list.
func WithLister(l Lister) Option {
	return func(s *Sentinel) { s.list = l }
}

// WithGracePeriod sets the wait after termination requests.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Sentinel) { s.grace = d }
}

// WithSleep replaces time.Sleep for the grace period.
func WithSleep(fn func(time.Duration)) Option {
	return func(s *Sentinel) { s.sleep = fn }
}

// New creates a Sentinel backed by the operating system's process table.
func New(logger *slog.Logger, opts ...Option) *Sentinel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Sentinel{
		list:   systemProcesses,
		grace:  DefaultGracePeriod,
		sleep:  time.Sleep,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running returns the identities in ids that have at least one live
// process, in the order given. It has no side effects.
func (s *Sentinel) Running(ids []browser.Identity) ([]browser.Identity, error) {
	procs, err := s.list()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue // exited or not inspectable
		}
		names = append(names, name)
	}

	var running []browser.Identity
	for _, id := range ids {
		for _, name := range names {
			if browser.MatchesProcess(id, name) {
				running = append(running, id)
				break
			}
		}
	}
	return running, nil
}

// TerminationResult summarises one Terminate call.
type TerminationResult struct {
	Browser    browser.Identity
	Terminated int
	Gone       int
	Failures   []error
}

// Terminate requests termination of every live process belonging to id. A
// process that already exited counts as success. Denied or failed requests
// are collected as TerminationErrors and do not stop the remaining ones.
// Terminate does not wait for the processes to exit.
func (s *Sentinel) Terminate(id browser.Identity) (*TerminationResult, error) {
	procs, err := s.list()
	if err != nil {
		return nil, err
	}

	res := &TerminationResult{Browser: id}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || !browser.MatchesProcess(id, name) {
			continue
		}

		err = p.Terminate()
		switch {
		case err == nil:
			res.Terminated++
			s.logger.Info("process terminated", "browser", id, "process", name, "pid", p.PID())
		case processGone(err):
			res.Gone++
			s.logger.Info("process already exited", "browser", id, "process", name, "pid", p.PID())
		default:
			tErr := scanerrors.NewTermination(name, p.PID(), err)
			res.Failures = append(res.Failures, tErr)
			if errors.Is(err, os.ErrPermission) {
				s.logger.Warn("termination denied", "browser", id, "process", name, "pid", p.PID(), "error", err)
			} else {
				s.logger.Warn("termination failed", "browser", id, "process", name, "pid", p.PID(), "error", err)
			}
		}
	}
	return res, nil
}

// Close terminates each identity in turn and then waits the grace period
// once. It only returns an error when the process list cannot be read.
func (s *Sentinel) Close(ids []browser.Identity) ([]*TerminationResult, error) {
	var results []*TerminationResult
	for _, id := range ids {
		res, err := s.Terminate(id)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	if len(ids) > 0 && s.grace > 0 {
		s.logger.Debug("waiting for browsers to release their files", "grace", s.grace)
		s.sleep(s.grace)
	}
	return results, nil
}

// processGone reports whether a termination error means the process no
// longer exists.
func processGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, process.ErrorProcessNotRunning)
}

// gopsProcess adapts a gopsutil process.
type gopsProcess struct {
	p *process.Process
}

func (g gopsProcess) PID() int32            { return g.p.Pid }
func (g gopsProcess) Name() (string, error) { return g.p.Name() }
func (g gopsProcess) Terminate() error      { return g.p.Terminate() }

// systemProcesses lists live processes through gopsutil.
func systemProcesses() ([]Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		if p == nil {
			continue
		}
		out = append(out, gopsProcess{p: p})
	}
	return out, nil
}
