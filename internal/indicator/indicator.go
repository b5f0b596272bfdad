// Package indicator handles desktop notifications and audio cue playback.
package indicator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gen2brain/beeep"
	"github.com/rbright/whisper-dictate/internal/config"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowTranscript(context.Context, string)
	ShowError(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	Hide(context.Context)
}

const (
	previewRunes = 80
	noteBacklog  = 16
)

var errNoteBacklog = errors.New("notification backlog full")

// Notifier sends desktop notifications through beeep and plays synthesized cues through pulse.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	notify func(title string, message string) error
	play   func(kind cueKind) error

	notes     chan string
	notesOnce sync.Once
	soundMu   sync.Mutex
	pending   sync.WaitGroup
}

// NewNotifier creates an indicator controller from config.
func NewNotifier(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: indicatorMessagesFromEnv(),
		notify: func(title string, message string) error {
			return beeep.Notify(title, message, "")
		},
		play:  emitCue,
		notes: make(chan string, noteBacklog),
	}
}

// ShowRecording signals recording start and emits the start cue.
func (n *Notifier) ShowRecording(context.Context) {
	n.playCue(cueStart)
	n.send(n.messages.recording)
}

// ShowTranscribing signals the post-capture transcription state.
func (n *Notifier) ShowTranscribing(context.Context) {
	n.send(n.messages.processing)
}

// ShowTranscript shows a preview of the delivered text.
func (n *Notifier) ShowTranscript(_ context.Context, text string) {
	n.send(n.messages.copied + ": " + preview(text))
}

// ShowError displays an error-state message.
func (n *Notifier) ShowError(_ context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		text = n.messages.errorText
	}
	n.send(text)
}

// CueStop emits the stop cue.
func (n *Notifier) CueStop(context.Context) {
	n.playCue(cueStop)
}

// CueComplete emits the successful-delivery cue.
func (n *Notifier) CueComplete(context.Context) {
	n.playCue(cueComplete)
}

// CueCancel emits the failure cue.
func (n *Notifier) CueCancel(context.Context) {
	n.playCue(cueCancel)
}

// Hide is a no-op: desktop notifications expire on their own.
func (n *Notifier) Hide(context.Context) {}

// Wait blocks until queued notifications and cues finish or timeout elapses.
func (n *Notifier) Wait(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		n.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// send queues message for the notification worker. Notifications keep their order;
// a full backlog drops the message rather than block the caller.
func (n *Notifier) send(message string) {
	if !n.cfg.Notify {
		return
	}
	n.notesOnce.Do(func() { go n.deliverNotes() })

	n.pending.Add(1)
	select {
	case n.notes <- message:
	default:
		n.pending.Done()
		n.log("desktop notification dropped", errNoteBacklog)
	}
}

func (n *Notifier) deliverNotes() {
	title := strings.TrimSpace(n.cfg.AppName)
	if title == "" {
		title = "whisper-dictate"
	}
	for message := range n.notes {
		if err := n.notify(title, message); err != nil {
			n.log("desktop notification failed", err)
		}
		n.pending.Done()
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.Sound {
		return
	}
	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := n.play(kind); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes]) + "…"
}
