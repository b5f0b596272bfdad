package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rbright/whisper-dictate/internal/audio"
	"github.com/rbright/whisper-dictate/internal/fsm"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/transcribe"
	"github.com/stretchr/testify/require"
)

// callLog records collaborator calls across goroutines.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeCoordinator struct {
	log      *callLog
	outcome  instance.Outcome
	err      error
	releases atomic.Int32
}

func (f *fakeCoordinator) ClaimOrSignal() (instance.Outcome, error) {
	f.log.add("claim")
	if f.err != nil {
		return 0, f.err
	}
	if f.outcome == 0 {
		return instance.Claimed, nil
	}
	return f.outcome, nil
}

func (f *fakeCoordinator) Release() error {
	f.releases.Add(1)
	f.log.add("release")
	return nil
}

type fakeRecorder struct {
	log      *callLog
	levels   []float64
	startErr error
	artifact *audio.Artifact
	stopErr  error
	stopGate chan struct{}
	stops    atomic.Int32
}

func (f *fakeRecorder) Start(onLevel audio.LevelFunc) error {
	f.log.add("start")
	if f.startErr != nil {
		return f.startErr
	}
	for _, level := range f.levels {
		onLevel(level)
	}
	return nil
}

func (f *fakeRecorder) Stop() (*audio.Artifact, error) {
	f.stops.Add(1)
	f.log.add("stop")
	if f.stopGate != nil {
		<-f.stopGate
	}
	return f.artifact, f.stopErr
}

func (f *fakeRecorder) CleanupArtifact() { f.log.add("cleanup") }
func (f *fakeRecorder) Teardown()        { f.log.add("teardown") }

type fakeTranscriber struct {
	result transcribe.Result
	gate   chan struct{}
	calls  atomic.Int32
	path   atomic.Value
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath string, _ string, _ int, _ time.Duration) transcribe.Result {
	f.calls.Add(1)
	f.path.Store(audioPath)
	if f.gate != nil {
		<-f.gate
	}
	return f.result
}

type fakeObserver struct {
	mu     sync.Mutex
	levels []float64
}

func (f *fakeObserver) ObserveLevel(level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, level)
}

func (f *fakeObserver) snapshot() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.levels...)
}

type fakeIndicator struct {
	stopCues     atomic.Int32
	completeCues atomic.Int32
	cancelCues   atomic.Int32
	hides        atomic.Int32
	mu           sync.Mutex
	errors       []string
}

func (*fakeIndicator) ShowRecording(context.Context)          {}
func (*fakeIndicator) ShowTranscribing(context.Context)       {}
func (*fakeIndicator) ShowTranscript(context.Context, string) {}
func (f *fakeIndicator) ShowError(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, text)
}
func (f *fakeIndicator) CueStop(context.Context)     { f.stopCues.Add(1) }
func (f *fakeIndicator) CueComplete(context.Context) { f.completeCues.Add(1) }
func (f *fakeIndicator) CueCancel(context.Context)   { f.cancelCues.Add(1) }
func (f *fakeIndicator) Hide(context.Context)        { f.hides.Add(1) }

type fakeMetrics struct {
	mu       sync.Mutex
	stops    []string
	captured int64
	results  []string
	outcomes []string
}

func (f *fakeMetrics) StopRequested(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, source)
}

func (f *fakeMetrics) Captured(bytes int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured += bytes
}

func (f *fakeMetrics) TranscriptionFinished(result string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

func (f *fakeMetrics) SessionFinished(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

// harness wires a controller to fakes.
type harness struct {
	log         *callLog
	coordinator *fakeCoordinator
	recorder    *fakeRecorder
	transcriber *fakeTranscriber
	observer    *fakeObserver
	indicator   *fakeIndicator
	metrics     *fakeMetrics
	committed   chan string
	commitErr   error
	opts        Options
}

func newHarness() *harness {
	log := &callLog{}
	return &harness{
		log:         log,
		coordinator: &fakeCoordinator{log: log},
		recorder: &fakeRecorder{
			log:      log,
			artifact: &audio.Artifact{Path: "/tmp/whisper-dictate-test.wav", Bytes: 6144},
		},
		transcriber: &fakeTranscriber{result: transcribe.Result{Text: "testing one two", Duration: 40 * time.Millisecond}},
		observer:    &fakeObserver{},
		indicator:   &fakeIndicator{},
		metrics:     &fakeMetrics{},
		committed:   make(chan string, 4),
		opts:        Options{Language: "en", Threads: 2, TranscribeTimeout: time.Second, AudioDevice: "test mic"},
	}
}

func (h *harness) controller() *Controller {
	return NewController(Deps{
		Coordinator: h.coordinator,
		Recorder:    h.recorder,
		Transcriber: h.transcriber,
		Committer: CommitFunc(func(_ context.Context, text string) error {
			h.committed <- text
			return h.commitErr
		}),
		Observer:  h.observer,
		Indicator: h.indicator,
		Metrics:   h.metrics,
		Clock:     fixedClock{now: time.Unix(1700000000, 0)},
	}, h.opts)
}

func runAsync(ctx context.Context, ctrl *Controller) <-chan Result {
	resultCh := make(chan Result, 1)
	go func() {
		resultCh <- ctrl.Run(ctx)
	}()
	return resultCh
}

func waitForState(t *testing.T, ctrl *Controller, desired fsm.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return ctrl.State() == desired
	}, 2*time.Second, 5*time.Millisecond, "state never reached %s (current %s)", desired, ctrl.State())
}

func waitForResult(t *testing.T, resultCh <-chan Result) Result {
	t.Helper()
	select {
	case result := <-resultCh:
		return result
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for session result")
		return Result{}
	}
}

var errBoom = errors.New("boom")
