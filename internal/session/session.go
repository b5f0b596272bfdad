// Package session coordinates the record, stop, transcribe, and deliver lifecycle.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/whisper-dictate/internal/fsm"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/transcribe"
)

const eventBuffer = 64

type eventKind int

const (
	eventLevel eventKind = iota + 1
	eventStop
	eventTerminate
	eventTranscribed
)

type event struct {
	kind   eventKind
	level  float64
	source string
	result transcribe.Result
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Logger      *slog.Logger
	Coordinator Coordinator
	Recorder    Recorder
	Transcriber Transcriber
	Committer   Committer
	Observer    LevelObserver
	Indicator   Indicator
	Metrics     Metrics
	Clock       Clock
}

// Options carry per-session transcription settings.
type Options struct {
	Language          string
	Threads           int
	TranscribeTimeout time.Duration
	// MaxDuration stops recording automatically; zero disables the cap.
	MaxDuration time.Duration
	AudioDevice string
}

// Controller orchestrates one session. Only the Run goroutine mutates state.
type Controller struct {
	logger      *slog.Logger
	coordinator Coordinator
	recorder    Recorder
	transcriber Transcriber
	commit      Committer
	observer    LevelObserver
	indicator   Indicator
	metrics     Metrics
	clock       Clock
	opts        Options

	mu    sync.RWMutex
	state fsm.State

	events chan event
	done   chan struct{}

	closeOnce   sync.Once
	releaseOnce sync.Once

	result Result
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(deps Deps, opts Options) *Controller {
	if deps.Committer == nil {
		deps.Committer = CommitFunc(func(context.Context, string) error { return nil })
	}
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	if deps.Indicator == nil {
		deps.Indicator = noopIndicator{}
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}

	return &Controller{
		logger:      deps.Logger,
		coordinator: deps.Coordinator,
		recorder:    deps.Recorder,
		transcriber: deps.Transcriber,
		commit:      deps.Committer,
		observer:    deps.Observer,
		indicator:   deps.Indicator,
		metrics:     deps.Metrics,
		clock:       deps.Clock,
		opts:        opts,
		state:       fsm.StateIdle,
		events:      make(chan event, eventBuffer),
		done:        make(chan struct{}),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ObserveLevel enqueues a level sample. Samples are dropped when the loop is behind.
func (c *Controller) ObserveLevel(level float64) {
	select {
	case c.events <- event{kind: eventLevel, level: level}:
	default:
	}
}

// RequestStop asks the session to stop recording. Only the first request has effect.
func (c *Controller) RequestStop(source string) {
	c.enqueue(event{kind: eventStop, source: source})
}

// Terminate releases ownership immediately and then stops like RequestStop.
func (c *Controller) Terminate() {
	c.enqueue(event{kind: eventTerminate})
}

// Done is closed once the session has been torn down.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// enqueue blocks until the loop accepts the event or the session is closed.
func (c *Controller) enqueue(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(ev fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, ev)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Run claims the session and drives it to completion.
func (c *Controller) Run(ctx context.Context) Result {
	c.result = Result{StartedAt: c.clock.Now(), AudioDevice: c.opts.AudioDevice}

	outcome, err := c.coordinator.ClaimOrSignal()
	c.result.Outcome = outcome
	if err != nil || outcome != instance.Claimed {
		c.recorder.Teardown()
		c.result.Err = err
		if err == nil {
			c.info("session signaled existing owner")
		}
		c.finishUnclaimed()
		return c.result
	}
	c.info("session claimed")

	if err := c.recorder.Start(c.ObserveLevel); err != nil {
		c.result.Err = err
		c.indicator.ShowError(context.Background(), "Unable to start recording")
		c.close()
		return c.result
	}
	_ = c.transition(fsm.EventStart)
	c.indicator.ShowRecording(ctx)
	c.info("recording started", "device", c.opts.AudioDevice)

	var maxDuration <-chan time.Time
	if c.opts.MaxDuration > 0 {
		timer := time.NewTimer(c.opts.MaxDuration)
		defer timer.Stop()
		maxDuration = timer.C
	}

	// Transcription and delivery outlive cancellation; only recording is cut short.
	workCtx := context.WithoutCancel(ctx)
	ctxDone := ctx.Done()

	for {
		select {
		case <-ctxDone:
			ctxDone = nil
			if c.terminate(workCtx) {
				return c.result
			}
		case <-maxDuration:
			maxDuration = nil
			if c.stop(workCtx, SourceMaxDuration) {
				return c.result
			}
		case ev := <-c.events:
			if c.handle(workCtx, ev) {
				return c.result
			}
		}
	}
}

// handle dispatches one loop event and reports whether the session closed.
func (c *Controller) handle(ctx context.Context, ev event) bool {
	switch ev.kind {
	case eventLevel:
		if c.State() == fsm.StateRecording {
			c.observer.ObserveLevel(ev.level)
		}
	case eventStop:
		return c.stop(ctx, ev.source)
	case eventTerminate:
		return c.terminate(ctx)
	case eventTranscribed:
		return c.transcribed(ctx, ev.result)
	}
	return false
}

// terminate releases the marker at once and then behaves like a stop request.
func (c *Controller) terminate(ctx context.Context) bool {
	c.release()
	return c.stop(ctx, SourceTerminate)
}

// stop ends recording once. Later requests are ignored.
func (c *Controller) stop(ctx context.Context, source string) bool {
	if c.State() != fsm.StateRecording {
		c.debug("stop request ignored", "source", source, "state", string(c.State()))
		return false
	}
	if err := c.transition(fsm.EventStop); err != nil {
		return false
	}
	c.result.StopSource = source
	c.metrics.StopRequested(source)
	c.info("stop requested", "source", source)
	c.indicator.CueStop(ctx)

	artifact, err := c.recorder.Stop()
	if err != nil {
		_ = c.transition(fsm.EventEmpty)
		c.fail(ctx, FailureCapture, err, "Recording failed")
		return c.deliver(ctx, "")
	}
	if artifact == nil {
		_ = c.transition(fsm.EventEmpty)
		c.fail(ctx, FailureNoAudio, ErrNoAudio, "No audio recorded")
		return c.deliver(ctx, "")
	}

	c.result.BytesCaptured = artifact.Bytes
	c.metrics.Captured(artifact.Bytes)
	_ = c.transition(fsm.EventCaptured)
	c.indicator.ShowTranscribing(ctx)

	go func(path string) {
		res := c.transcriber.Transcribe(ctx, path, c.opts.Language, c.opts.Threads, c.opts.TranscribeTimeout)
		c.enqueue(event{kind: eventTranscribed, result: res})
	}(artifact.Path)
	return false
}

// transcribed consumes the background transcription result.
func (c *Controller) transcribed(ctx context.Context, res transcribe.Result) bool {
	if err := c.transition(fsm.EventTranscribed); err != nil {
		return false
	}
	c.result.TranscribeLatency = res.Duration

	label := "ok"
	if res.Failure != transcribe.FailureNone {
		label = string(res.Failure)
	}
	c.metrics.TranscriptionFinished(label, res.Duration)
	c.info("transcription finished", "duration_ms", res.Duration.Milliseconds(), "failure", label)

	if res.Failure != transcribe.FailureNone {
		c.fail(ctx, Failure(res.Failure), res.Err, failureMessage(res.Failure))
		return c.deliver(ctx, "")
	}
	return c.deliver(ctx, res.Text)
}

// deliver commits non-empty text and closes the session.
func (c *Controller) deliver(ctx context.Context, text string) bool {
	if text != "" {
		c.result.Transcript = text
		if err := c.commit.Commit(ctx, text); err != nil {
			c.fail(ctx, FailureDelivery, err, "Output dispatch failed")
		} else {
			c.indicator.CueComplete(ctx)
			c.indicator.ShowTranscript(ctx, text)
		}
	}
	_ = c.transition(fsm.EventDelivered)
	c.close()
	return true
}

// fail records a recovered mid-session failure.
func (c *Controller) fail(ctx context.Context, failure Failure, err error, message string) {
	c.result.Failure = failure
	c.result.Err = err
	if c.logger != nil {
		attrs := []any{"failure", string(failure)}
		if err != nil {
			attrs = append(attrs, "error", err.Error())
		}
		if failure == FailureDelivery {
			c.logger.Error("delivery failed", attrs...)
		} else {
			c.logger.Warn("session failed", attrs...)
		}
	}
	c.indicator.CueCancel(ctx)
	c.indicator.ShowError(ctx, message)
}

// close runs artifact cleanup, pipeline teardown, and marker release exactly once.
func (c *Controller) close() {
	c.closeOnce.Do(func() {
		_ = c.transition(fsm.EventClose)
		c.recorder.CleanupArtifact()
		c.recorder.Teardown()
		c.release()
		close(c.done)

		hideCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
		defer cancel()
		c.indicator.Hide(hideCtx)

		c.result.State = c.State()
		c.result.FinishedAt = c.clock.Now()
		c.metrics.SessionFinished(c.result.OutcomeLabel())
		if c.result.Fatal() {
			c.info("session failed", "error", c.result.Err.Error())
			return
		}
		c.info("session complete",
			"outcome", c.result.OutcomeLabel(),
			"bytes_captured", c.result.BytesCaptured,
			"stop_source", c.result.StopSource,
		)
	})
}

// finishUnclaimed closes a Run that never owned the session.
func (c *Controller) finishUnclaimed() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.result.State = c.State()
		c.result.FinishedAt = c.clock.Now()
		c.metrics.SessionFinished(c.result.OutcomeLabel())
	})
}

func (c *Controller) release() {
	c.releaseOnce.Do(func() {
		if err := c.coordinator.Release(); err != nil && c.logger != nil {
			c.logger.Error("release session marker failed", "error", err.Error())
		}
	})
}

func failureMessage(kind transcribe.FailureKind) string {
	switch kind {
	case transcribe.FailureTimeout:
		return "Transcription timed out"
	case transcribe.FailureEmptyOutput:
		return "No speech detected"
	default:
		return "Speech recognition failed"
	}
}

func (c *Controller) info(msg string, attrs ...any) {
	if c.logger != nil {
		c.logger.Info(msg, attrs...)
	}
}

func (c *Controller) debug(msg string, attrs ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, attrs...)
	}
}
