// Package instance enforces a single active dictation session per machine.
//
// Ownership is a marker file holding the owner's PID. A new invocation either
// claims the marker or signals the live owner to stop recording.
package instance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Outcome is the result of ClaimOrSignal.
type Outcome int

const (
	// Claimed means this process now owns the session marker.
	Claimed Outcome = iota + 1
	// SignaledExisting means a live owner was asked to stop and nothing was claimed.
	SignaledExisting
)

func (o Outcome) String() string {
	switch o {
	case Claimed:
		return "claimed"
	case SignaledExisting:
		return "signaled_existing"
	default:
		return "unknown"
	}
}

// OwnerState describes what the marker currently points at.
type OwnerState string

const (
	OwnerNone  OwnerState = "none"
	OwnerAlive OwnerState = "alive"
	OwnerStale OwnerState = "stale"
)

var (
	// ErrMarkerWrite wraps failures creating or writing the marker.
	ErrMarkerWrite = errors.New("write session marker")
	// ErrStaleOwnership is returned when a stale marker reappears after being reclaimed once.
	ErrStaleOwnership = errors.New("session marker stale after reclaim")
	// ErrMarkerContended is returned when the marker keeps vanishing between create and read.
	ErrMarkerContended = errors.New("session marker contended")
	// ErrNoOwner is returned by SignalOwner when no live session exists.
	ErrNoOwner = errors.New("no active whisper-dictate session")
)

// Coordinator claims, inspects, and releases the session marker.
type Coordinator struct {
	path     string
	pid      int
	process  Process
	remove   func(string) error
	readFile func(string) ([]byte, error)
}

// New creates a coordinator for path acting as the current process.
func New(path string) *Coordinator {
	return NewWithProcess(path, os.Getpid(), SystemProcess())
}

// NewWithProcess creates a coordinator with an explicit identity and process prober.
func NewWithProcess(path string, pid int, process Process) *Coordinator {
	if process == nil {
		process = SystemProcess()
	}
	return &Coordinator{path: path, pid: pid, process: process, remove: os.Remove, readFile: os.ReadFile}
}

// Path returns the marker location.
func (c *Coordinator) Path() string {
	return c.path
}

// ClaimOrSignal claims the marker, or signals its live owner to stop.
//
// A stale marker is removed and the claim retried once; meeting a stale
// marker again returns ErrStaleOwnership.
func (c *Coordinator) ClaimOrSignal() (Outcome, error) {
	for attempt := 0; attempt < 2; attempt++ {
		created, err := c.create()
		if err != nil {
			return 0, err
		}
		if created {
			return Claimed, nil
		}

		pid, state, err := c.Owner()
		if err != nil {
			return 0, err
		}

		switch state {
		case OwnerNone:
			// Removed between create and read; try again.
			continue
		case OwnerAlive:
			if pid == c.pid {
				return Claimed, nil
			}
			if err := c.process.Stop(pid); err != nil {
				return 0, fmt.Errorf("signal session owner %d: %w", pid, err)
			}
			return SignaledExisting, nil
		case OwnerStale:
			if attempt > 0 {
				return 0, fmt.Errorf("%w: %s (pid %d)", ErrStaleOwnership, c.path, pid)
			}
			if err := c.remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return 0, fmt.Errorf("remove stale marker %s: %w", c.path, err)
			}
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrMarkerContended, c.path)
}

// Release deletes the marker. A missing marker is not an error.
func (c *Coordinator) Release() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session marker %s: %w", c.path, err)
	}
	return nil
}

// Owner reads the marker without mutating it.
//
// Unparseable content is reported as stale with pid 0.
func (c *Coordinator) Owner() (int, OwnerState, error) {
	content, err := c.readFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, OwnerNone, nil
		}
		return 0, OwnerNone, fmt.Errorf("read session marker %s: %w", c.path, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, OwnerStale, nil
	}
	if !c.process.Exists(pid) {
		return pid, OwnerStale, nil
	}
	return pid, OwnerAlive, nil
}

// SignalOwner asks a live owner to stop without claiming anything.
func (c *Coordinator) SignalOwner() (int, error) {
	pid, state, err := c.Owner()
	if err != nil {
		return 0, err
	}
	if state != OwnerAlive || pid == c.pid {
		return pid, ErrNoOwner
	}
	if err := c.process.Stop(pid); err != nil {
		return pid, fmt.Errorf("signal session owner %d: %w", pid, err)
	}
	return pid, nil
}

// create writes the marker only when absent. It reports false when a marker exists.
func (c *Coordinator) create() (bool, error) {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrMarkerWrite, c.path, err)
		}
	}

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %v", ErrMarkerWrite, c.path, err)
	}

	if _, err := f.WriteString(strconv.Itoa(c.pid)); err != nil {
		_ = f.Close()
		_ = os.Remove(c.path)
		return false, fmt.Errorf("%w: %s: %v", ErrMarkerWrite, c.path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(c.path)
		return false, fmt.Errorf("%w: %s: %v", ErrMarkerWrite, c.path, err)
	}
	return true, nil
}
