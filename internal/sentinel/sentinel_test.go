package sentinel

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/domaintally/internal/browser"
	scanerrors "github.com/runnerr0/domaintally/internal/errors"
)

type fakeProcess struct {
	pid          int32
	name         string
	nameErr      error
	terminateErr error
	terminated   bool
}

func (f *fakeProcess) PID() int32 { return f.pid }

func (f *fakeProcess) Name() (string, error) { return f.name, f.nameErr }

func (f *fakeProcess) Terminate() error {
	f.terminated = true
	return f.terminateErr
}

func listerOf(procs ...*fakeProcess) Lister {
	return func() ([]Process, error) {
		out := make([]Process, len(procs))
		for i, p := range procs {
			out[i] = p
		}
		return out, nil
	}
}

func TestRunning_MatchesCaseInsensitively(t *testing.T) {
	s := New(nil, WithLister(listerOf(
		&fakeProcess{pid: 1, name: "CHROME.EXE"},
		&fakeProcess{pid: 2, name: "explorer.exe"},
		&fakeProcess{pid: 3, name: "firefox.exe"},
		&fakeProcess{pid: 4, name: "chrome.exe"},
	)))

	running, err := s.Running(browser.All())
	require.NoError(t, err)
	assert.Equal(t, []browser.Identity{browser.Chrome, browser.Firefox}, running)
}

func TestRunning_RespectsRequestedIdentities(t *testing.T) {
	s := New(nil, WithLister(listerOf(
		&fakeProcess{pid: 1, name: "chrome.exe"},
		&fakeProcess{pid: 2, name: "msedge.exe"},
	)))

	running, err := s.Running([]browser.Identity{browser.Edge, browser.Brave})
	require.NoError(t, err)
	assert.Equal(t, []browser.Identity{browser.Edge}, running)
}

func TestRunning_SkipsUnreadableNames(t *testing.T) {
	s := New(nil, WithLister(listerOf(
		&fakeProcess{pid: 1, nameErr: errors.New("access denied")},
	)))

	running, err := s.Running(browser.All())
	require.NoError(t, err)
	assert.Empty(t, running)
}

func TestRunning_ListError(t *testing.T) {
	s := New(nil, WithLister(func() ([]Process, error) {
		return nil, errors.New("proc unavailable")
	}))

	_, err := s.Running(browser.All())
	assert.EqualError(t, err, "proc unavailable")
}

func TestRunning_NoSideEffects(t *testing.T) {
	p := &fakeProcess{pid: 1, name: "chrome.exe"}
	s := New(nil, WithLister(listerOf(p)))

	_, err := s.Running(browser.All())
	require.NoError(t, err)
	assert.False(t, p.terminated)
}

func TestTerminate_ContinuesPastFailures(t *testing.T) {
	denied := &fakeProcess{pid: 10, name: "chrome.exe", terminateErr: syscall.EPERM}
	gone := &fakeProcess{pid: 11, name: "GoogleCrashHandler.exe", terminateErr: os.ErrProcessDone}
	ok := &fakeProcess{pid: 12, name: "chrome.exe"}
	other := &fakeProcess{pid: 13, name: "firefox.exe"}

	s := New(nil, WithLister(listerOf(denied, gone, ok, other)))

	res, err := s.Terminate(browser.Chrome)
	require.NoError(t, err)

	assert.True(t, denied.terminated)
	assert.True(t, gone.terminated)
	assert.True(t, ok.terminated)
	assert.False(t, other.terminated, "other browsers are left alone")

	assert.Equal(t, browser.Chrome, res.Browser)
	assert.Equal(t, 1, res.Terminated)
	assert.Equal(t, 1, res.Gone)
	require.Len(t, res.Failures, 1)
	assert.True(t, scanerrors.Is(res.Failures[0], scanerrors.ErrTermination))
	assert.ErrorIs(t, res.Failures[0], os.ErrPermission)
	assert.Contains(t, res.Failures[0].Error(), "pid 10")
}

func TestTerminate_NoSuchProcessIsSuccess(t *testing.T) {
	p := &fakeProcess{pid: 20, name: "brave.exe", terminateErr: syscall.ESRCH}
	s := New(nil, WithLister(listerOf(p)))

	res, err := s.Terminate(browser.Brave)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Gone)
	assert.Empty(t, res.Failures)
}

func TestClose_WaitsGraceOnce(t *testing.T) {
	var slept []time.Duration
	s := New(nil,
		WithLister(listerOf(
			&fakeProcess{pid: 1, name: "chrome.exe"},
			&fakeProcess{pid: 2, name: "opera.exe"},
		)),
		WithGracePeriod(2*time.Second),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)

	results, err := s.Close([]browser.Identity{browser.Chrome, browser.Opera})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Terminated)
	assert.Equal(t, 1, results[1].Terminated)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestClose_NothingToCloseDoesNotWait(t *testing.T) {
	slept := 0
	s := New(nil, WithLister(listerOf()), WithSleep(func(time.Duration) { slept++ }))

	results, err := s.Close(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, slept)
}

func TestNew_Defaults(t *testing.T) {
	s := New(nil)
	assert.Equal(t, DefaultGracePeriod, s.grace)
	assert.NotNil(t, s.list)
}
