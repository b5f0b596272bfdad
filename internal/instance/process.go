package instance

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Process probes and signals other processes by PID.
type Process interface {
	// Exists reports whether pid refers to a live process. It has no effect on the target.
	Exists(pid int) bool
	// Stop asks pid to stop recording.
	Stop(pid int) error
}

// unixProcess implements Process with kill(2).
type unixProcess struct{}

// SystemProcess returns the platform Process implementation.
func SystemProcess() Process {
	return unixProcess{}
}

func (unixProcess) Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	// EPERM: the process exists but belongs to someone else.
	return err == nil || errors.Is(err, unix.EPERM)
}

func (unixProcess) Stop(pid int) error {
	return unix.Kill(pid, unix.SIGUSR1)
}
