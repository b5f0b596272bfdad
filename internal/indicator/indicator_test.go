package indicator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rbright/whisper-dictate/internal/config"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	mu       sync.Mutex
	titles   []string
	messages []string
	cues     []cueKind
}

func newRecordedNotifier(cfg config.IndicatorConfig) (*Notifier, *recorded) {
	rec := &recorded{}
	n := NewNotifier(cfg, nil)
	n.messages = indicatorMessages(localeEnglish)
	n.notify = func(title string, message string) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.titles = append(rec.titles, title)
		rec.messages = append(rec.messages, message)
		return nil
	}
	n.play = func(kind cueKind) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.cues = append(rec.cues, kind)
		return nil
	}
	return n, rec
}

func TestNotifierDispatchesMessagesAndCues(t *testing.T) {
	cfg := config.Default().Indicator
	n, rec := newRecordedNotifier(cfg)
	ctx := context.Background()

	n.ShowRecording(ctx)
	n.ShowTranscribing(ctx)
	n.CueStop(ctx)
	n.ShowTranscript(ctx, "testing one two")
	n.CueComplete(ctx)
	n.ShowError(ctx, "")
	n.Hide(ctx)
	n.Wait(time.Second)

	require.Equal(t, []string{
		"Listening…",
		"Processing…",
		"Copied: testing one two",
		"Transcription failed",
	}, rec.messages)
	require.Equal(t, "whisper-dictate", rec.titles[0])
	require.ElementsMatch(t, []cueKind{cueStart, cueStop, cueComplete}, rec.cues)
}

func TestNotifierRespectsDisabledChannels(t *testing.T) {
	cfg := config.Default().Indicator
	cfg.Notify = false
	cfg.Sound = false
	n, rec := newRecordedNotifier(cfg)

	n.ShowRecording(context.Background())
	n.ShowError(context.Background(), "ignored")
	n.CueCancel(context.Background())
	n.Wait(time.Second)

	require.Empty(t, rec.messages)
	require.Empty(t, rec.cues)
}

func TestNotifierUsesConfiguredAppNameAndSwallowsErrors(t *testing.T) {
	cfg := config.Default().Indicator
	cfg.AppName = "dictation"
	cfg.Sound = false
	n, rec := newRecordedNotifier(cfg)
	n.notify = func(title string, message string) error {
		rec.titles = append(rec.titles, title)
		return errors.New("no dbus")
	}

	n.ShowError(context.Background(), "custom error")
	n.Wait(time.Second)
	require.Equal(t, []string{"dictation"}, rec.titles)
}

func TestNotifierDoesNotBlockOnSlowNotificationDaemon(t *testing.T) {
	cfg := config.Default().Indicator
	cfg.Sound = false
	n, rec := newRecordedNotifier(cfg)
	release := make(chan struct{})
	n.notify = func(title string, message string) error {
		<-release
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.messages = append(rec.messages, message)
		return nil
	}

	start := time.Now()
	n.ShowRecording(context.Background())
	n.ShowTranscribing(context.Background())
	require.Less(t, time.Since(start), 500*time.Millisecond)

	close(release)
	n.Wait(time.Second)
	require.Equal(t, []string{"Listening…", "Processing…"}, rec.messages)
}

func TestPreviewTruncatesLongText(t *testing.T) {
	require.Equal(t, "short", preview("  short "))

	long := strings.Repeat("é", previewRunes+5)
	got := preview(long)
	require.True(t, strings.HasSuffix(got, "…"))
	require.Equal(t, previewRunes+1, len([]rune(got)))
}

type countingIndicator struct {
	calls []string
}

func (c *countingIndicator) ShowRecording(context.Context)          { c.calls = append(c.calls, "recording") }
func (c *countingIndicator) ShowTranscribing(context.Context)       { c.calls = append(c.calls, "transcribing") }
func (c *countingIndicator) ShowTranscript(context.Context, string) { c.calls = append(c.calls, "transcript") }
func (c *countingIndicator) ShowError(context.Context, string)      { c.calls = append(c.calls, "error") }
func (c *countingIndicator) CueStop(context.Context)                { c.calls = append(c.calls, "stop") }
func (c *countingIndicator) CueComplete(context.Context)            { c.calls = append(c.calls, "complete") }
func (c *countingIndicator) CueCancel(context.Context)              { c.calls = append(c.calls, "cancel") }
func (c *countingIndicator) Hide(context.Context)                   { c.calls = append(c.calls, "hide") }

func TestMultiFansOutInOrder(t *testing.T) {
	first, second := &countingIndicator{}, &countingIndicator{}
	m := Multi{first, second}
	ctx := context.Background()

	m.ShowRecording(ctx)
	m.ShowTranscribing(ctx)
	m.ShowTranscript(ctx, "x")
	m.ShowError(ctx, "x")
	m.CueStop(ctx)
	m.CueComplete(ctx)
	m.CueCancel(ctx)
	m.Hide(ctx)

	want := []string{"recording", "transcribing", "transcript", "error", "stop", "complete", "cancel", "hide"}
	require.Equal(t, want, first.calls)
	require.Equal(t, want, second.calls)
}
