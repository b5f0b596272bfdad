package session

import (
	"errors"
	"time"

	"github.com/rbright/whisper-dictate/internal/fsm"
	"github.com/rbright/whisper-dictate/internal/instance"
)

// Failure names a mid-session failure that was recovered into an empty close.
type Failure string

const (
	FailureNone        Failure = ""
	FailureTimeout     Failure = "timeout"
	FailureProcess     Failure = "process_error"
	FailureEmptyOutput Failure = "empty_output"
	FailureNoAudio     Failure = "no_audio"
	FailureCapture     Failure = "capture_error"
	FailureDelivery    Failure = "delivery_failed"
)

// ErrNoAudio reports that recording stopped before any audio was captured.
var ErrNoAudio = errors.New("no audio recorded")

// Stop sources that originate inside the controller.
const (
	SourceTerminate   = "terminate"
	SourceMaxDuration = "max_duration"
)

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	State             fsm.State
	Outcome           instance.Outcome
	Transcript        string
	Failure           Failure
	Err               error
	AudioDevice       string
	BytesCaptured     int64
	TranscribeLatency time.Duration
	StartedAt         time.Time
	FinishedAt        time.Time
	StopSource        string
}

// Fatal reports whether Run failed before a session could proceed.
func (r Result) Fatal() bool {
	return r.Err != nil && r.Failure == FailureNone
}

// OutcomeLabel summarizes the result for logs, history, and metrics.
func (r Result) OutcomeLabel() string {
	switch {
	case r.Outcome == instance.SignaledExisting:
		return "signaled_existing"
	case r.Fatal():
		return "error"
	case r.Failure != FailureNone:
		return string(r.Failure)
	default:
		return "ok"
	}
}
