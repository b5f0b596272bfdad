package session

import (
	"context"
	"time"

	"github.com/rbright/whisper-dictate/internal/audio"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/transcribe"
)

// Coordinator owns the single-instance marker.
type Coordinator interface {
	ClaimOrSignal() (instance.Outcome, error)
	Release() error
}

// Recorder is the capture pipeline as seen by the controller.
type Recorder interface {
	Start(onLevel audio.LevelFunc) error
	Stop() (*audio.Artifact, error)
	CleanupArtifact()
	Teardown()
}

// Transcriber turns a finalized artifact into text. Implementations block.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string, threads int, timeout time.Duration) transcribe.Result
}

// LevelObserver receives normalized input levels while recording.
type LevelObserver interface {
	ObserveLevel(level float64)
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowTranscript(context.Context, string)
	ShowError(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	Hide(context.Context)
}

// Metrics records session counters.
type Metrics interface {
	StopRequested(source string)
	Captured(bytes int64)
	TranscriptionFinished(result string, duration time.Duration)
	SessionFinished(outcome string)
}

// Clock supplies timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)          {}
func (noopIndicator) ShowTranscribing(context.Context)       {}
func (noopIndicator) ShowTranscript(context.Context, string) {}
func (noopIndicator) ShowError(context.Context, string)      {}
func (noopIndicator) CueStop(context.Context)                {}
func (noopIndicator) CueComplete(context.Context)            {}
func (noopIndicator) CueCancel(context.Context)              {}
func (noopIndicator) Hide(context.Context)                   {}

type noopObserver struct{}

func (noopObserver) ObserveLevel(float64) {}

type noopMetrics struct{}

func (noopMetrics) StopRequested(string)                        {}
func (noopMetrics) Captured(int64)                              {}
func (noopMetrics) TranscriptionFinished(string, time.Duration) {}
func (noopMetrics) SessionFinished(string)                      {}
