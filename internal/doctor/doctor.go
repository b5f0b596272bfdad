// Package doctor runs readiness diagnostics for config, tools, models, audio, and local state.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rbright/whisper-dictate/internal/audio"
	"github.com/rbright/whisper-dictate/internal/config"
	"github.com/rbright/whisper-dictate/internal/history"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/models"
	"github.com/rbright/whisper-dictate/internal/output"
	"github.com/rbright/whisper-dictate/internal/transcribe"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded)}

	checks = append(checks, checkWhisper(cfg.Transcription.WhisperCLI))
	checks = append(checks, checkModel(cfg.Model))
	checks = append(checks, checkSink("clipboard", output.NewClipboard(cfg.Clipboard)))
	if cfg.General.OutputMode == config.OutputType {
		checks = append(checks, checkSink("type", output.NewTyper(cfg.TypeCmd)))
	}
	checks = append(checks, checkAudioSelection(ctx, cfg.Audio))
	checks = append(checks, checkMarker(instance.New(cfg.Instance.MarkerPath)))
	if cfg.History.Enable {
		checks = append(checks, checkHistory(ctx, cfg.History.Path))
	}

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("no file at %q; using defaults", loaded.Path)
	}
	if loaded.Exists {
		for _, warning := range loaded.Warnings {
			message += "; warning: " + warning.Message
		}
	}
	return Check{Name: "config", Pass: true, Message: message}
}

func checkWhisper(override string) Check {
	path, err := transcribe.Discover(override)
	if err != nil {
		return Check{Name: "whisper", Pass: false, Message: err.Error()}
	}
	return Check{Name: "whisper", Pass: true, Message: fmt.Sprintf("found at %s", path)}
}

// checkModel validates the configured model file is present and non-empty.
func checkModel(cfg config.ModelConfig) Check {
	path := models.Resolve(cfg.Path, cfg.Name)
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return Check{
			Name:    "model",
			Pass:    false,
			Message: fmt.Sprintf("%s missing; run `whisper-dictate download-model %s`", path, cfg.Name),
		}
	case info.IsDir() || info.Size() == 0:
		return Check{Name: "model", Pass: false, Message: fmt.Sprintf("%s is not a model file", path)}
	}
	return Check{Name: "model", Pass: true, Message: fmt.Sprintf("%s (%d bytes)", path, info.Size())}
}

type describer interface {
	Describe() (string, error)
}

func checkSink(name string, sink describer) Check {
	mechanism, err := sink.Describe()
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: "using " + mechanism}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.AudioConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkMarker reports the marker state. A stale marker passes because the next run reclaims it.
func checkMarker(coordinator *instance.Coordinator) Check {
	pid, state, err := coordinator.Owner()
	if err != nil {
		return Check{Name: "instance", Pass: false, Message: err.Error()}
	}
	switch state {
	case instance.OwnerAlive:
		return Check{Name: "instance", Pass: true, Message: fmt.Sprintf("session running (pid %d)", pid)}
	case instance.OwnerStale:
		return Check{
			Name:    "instance",
			Pass:    true,
			Message: fmt.Sprintf("stale marker %s (pid %d) will be reclaimed", coordinator.Path(), pid),
		}
	default:
		return Check{Name: "instance", Pass: true, Message: "no running session"}
	}
}

func checkHistory(ctx context.Context, path string) Check {
	store, err := history.Open(ctx, path, nil)
	if err != nil {
		return Check{Name: "history", Pass: false, Message: err.Error()}
	}
	if err := store.Close(); err != nil {
		return Check{Name: "history", Pass: false, Message: err.Error()}
	}
	return Check{Name: "history", Pass: true, Message: fmt.Sprintf("writable at %s", path)}
}
