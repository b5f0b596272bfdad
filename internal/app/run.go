package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/whisper-dictate/internal/audio"
	"github.com/rbright/whisper-dictate/internal/config"
	"github.com/rbright/whisper-dictate/internal/history"
	"github.com/rbright/whisper-dictate/internal/indicator"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/meter"
	"github.com/rbright/whisper-dictate/internal/metrics"
	"github.com/rbright/whisper-dictate/internal/models"
	"github.com/rbright/whisper-dictate/internal/output"
	"github.com/rbright/whisper-dictate/internal/session"
	"github.com/rbright/whisper-dictate/internal/transcribe"
)

// notifyDrain bounds how long run waits for queued notifications and cues.
const notifyDrain = 2 * time.Second

// commandRun starts a session, or signals the running one to stop.
//
// Everything that can fail at startup is built before the marker is claimed.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	transcriber, err := transcribe.New(transcribe.Options{
		CLI:       cfg.Transcription.WhisperCLI,
		ModelPath: models.Resolve(cfg.Model.Path, cfg.Model.Name),
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("transcriber setup failed", "error", err.Error())
		return 1
	}

	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("audio device selection failed", "error", err.Error())
		return 1
	}
	if selection.Warning != "" {
		fmt.Fprintf(r.Stderr, "warning: %s\n", selection.Warning)
		logger.Warn("audio device fallback", "warning", selection.Warning, "device", selection.Device.ID)
	}

	pipeline, err := audio.Open(ctx, selection.Device, audio.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("audio pipeline setup failed", "error", err.Error())
		return 1
	}

	recorder := metrics.New()
	notifier := indicator.NewNotifier(cfg.Indicator, logger)
	indicators := indicator.Multi{notifier}

	var (
		controller *session.Controller
		observer   session.LevelObserver
	)
	if cfg.UI.Enable && meter.Enabled() {
		visualizer, meterErr := meter.New(meter.Options{
			Theme:      cfg.UI.Theme,
			Position:   cfg.UI.Position,
			EdgeMargin: cfg.UI.EdgeMargin,
			Stop:       func() { controller.RequestStop(meter.StopSource) },
		})
		if meterErr != nil {
			logger.Warn("level visualizer disabled", "error", meterErr.Error())
		} else {
			indicators = append(indicators, visualizer)
			observer = visualizer
		}
	}

	controller = session.NewController(session.Deps{
		Logger:      logger,
		Coordinator: instance.New(cfg.Instance.MarkerPath),
		Recorder:    pipeline,
		Transcriber: transcriber,
		Committer:   output.NewCommitter(cfg, logger),
		Observer:    observer,
		Indicator:   indicators,
		Metrics:     recorder,
	}, session.Options{
		Language:          cfg.General.Language,
		Threads:           cfg.Transcription.Threads,
		TranscribeTimeout: cfg.Transcription.Timeout(),
		MaxDuration:       cfg.Transcription.MaxDuration(),
		AudioDevice:       selection.Device.ID,
	})

	unwatch := instance.Watch(controller)
	result := controller.Run(ctx)
	unwatch()

	logSessionResult(logger, result)
	if result.Outcome == instance.Claimed {
		recordHistory(ctx, cfg, result, logger)
	}
	if path := strings.TrimSpace(cfg.Metrics.Textfile); path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			logger.Warn("metrics textfile write failed", "path", path, "error", err.Error())
		}
	}
	notifier.Wait(notifyDrain)

	switch {
	case result.Outcome == instance.SignaledExisting:
		fmt.Fprintln(r.Stdout, "stop requested for running session")
		return 0
	case result.Fatal():
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	case result.Failure != session.FailureNone:
		fmt.Fprintf(r.Stderr, "note: %s\n", failureNote(result))
		return 0
	}

	if transcript := strings.TrimSpace(result.Transcript); transcript != "" {
		fmt.Fprintln(r.Stdout, transcript)
	}
	return 0
}

func failureNote(result session.Result) string {
	if result.Err == nil {
		return string(result.Failure)
	}
	return fmt.Sprintf("%s: %v", result.Failure, result.Err)
}

// recordHistory stores the session; failures are logged and never change the exit code.
func recordHistory(ctx context.Context, cfg config.Config, result session.Result, logger *slog.Logger) {
	if !cfg.History.Enable || strings.TrimSpace(cfg.History.Path) == "" {
		return
	}

	store, err := history.Open(ctx, cfg.History.Path, logger)
	if err != nil {
		logger.Warn("history unavailable", "path", cfg.History.Path, "error", err.Error())
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.Record(ctx, historyEntry(cfg, result)); err != nil {
		logger.Warn("history write failed", "error", err.Error())
	}
}

func historyEntry(cfg config.Config, result session.Result) history.Entry {
	return history.Entry{
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Outcome:       result.OutcomeLabel(),
		Failure:       string(result.Failure),
		Text:          result.Transcript,
		BytesCaptured: result.BytesCaptured,
		AudioDevice:   result.AudioDevice,
		Model:         cfg.Model.Name,
		Language:      cfg.General.Language,
		TranscribeMS:  result.TranscribeLatency.Milliseconds(),
	}
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"outcome", result.OutcomeLabel(),
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
		"transcript_length", len(result.Transcript),
		"transcribe_latency_ms", result.TranscribeLatency.Milliseconds(),
		"stop_source", result.StopSource,
	}

	if result.Err != nil {
		logger.Error("session summary", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session summary", fields...)
}
