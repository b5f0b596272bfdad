// Package app dispatches whisper-dictate commands against the loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/whisper-dictate/internal/audio"
	"github.com/rbright/whisper-dictate/internal/cli"
	"github.com/rbright/whisper-dictate/internal/config"
	"github.com/rbright/whisper-dictate/internal/doctor"
	"github.com/rbright/whisper-dictate/internal/history"
	"github.com/rbright/whisper-dictate/internal/instance"
	"github.com/rbright/whisper-dictate/internal/logging"
	"github.com/rbright/whisper-dictate/internal/models"
	"github.com/rbright/whisper-dictate/internal/version"
)

const binaryName = "whisper-dictate"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	if parsed.Command == cli.CommandInitConfig {
		return r.commandInitConfig(parsed.ConfigPath)
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	cfgLoaded.Config, err = parsed.Overrides.Apply(cfgLoaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	cfg := cfgLoaded.Config
	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, cfg, logger)
	case cli.CommandStop:
		return r.commandStop(cfg)
	case cli.CommandStatus:
		return r.commandStatus(cfg)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandModels:
		return r.commandModels(cfg)
	case cli.CommandDownloadModel:
		return r.commandDownloadModel(ctx, cfg, parsed.ModelName, logger)
	case cli.CommandShowConfig:
		return r.commandShowConfig(cfgLoaded)
	case cli.CommandHistory:
		return r.commandHistory(ctx, cfg, parsed.Limit, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandInitConfig(explicitPath string) int {
	path, err := config.ResolvePath(explicitPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := config.WriteDefault(path); err != nil {
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintf(r.Stderr, "error: config already exists at %s\n", path)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "wrote %s\n", path)
	return 0
}

func (r Runner) commandShowConfig(loaded config.Loaded) int {
	content, err := config.Render(loaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	source := loaded.Path
	if !loaded.Exists {
		source += " (not found, defaults)"
	}
	fmt.Fprintf(r.Stdout, "# %s\n%s", source, content)
	return 0
}

func (r Runner) commandStop(cfg config.Config) int {
	pid, err := instance.New(cfg.Instance.MarkerPath).SignalOwner()
	if err != nil {
		if errors.Is(err, instance.ErrNoOwner) {
			fmt.Fprintf(r.Stderr, "error: no active %s session\n", binaryName)
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "stop requested (pid %d)\n", pid)
	return 0
}

func (r Runner) commandStatus(cfg config.Config) int {
	pid, state, err := instance.New(cfg.Instance.MarkerPath).Owner()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	switch state {
	case instance.OwnerAlive:
		fmt.Fprintf(r.Stdout, "recording (pid %d)\n", pid)
	case instance.OwnerStale:
		fmt.Fprintf(r.Stdout, "stale (pid %d)\n", pid)
	default:
		fmt.Fprintln(r.Stdout, "idle")
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandModels(cfg config.Config) int {
	names, err := models.List(cfg.Model.Path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(names) == 0 {
		fmt.Fprintf(r.Stdout, "no models in %s; run `%s download-model %s`\n", cfg.Model.Path, binaryName, cfg.Model.Name)
		return 0
	}

	configured := filepath.Base(models.Resolve(cfg.Model.Path, cfg.Model.Name))
	for _, name := range names {
		mark := " "
		if name == configured {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %s\n", mark, models.ShortName(name))
	}
	return 0
}

func (r Runner) commandDownloadModel(ctx context.Context, cfg config.Config, name string, logger *slog.Logger) int {
	path, err := models.Download(ctx, models.Options{}, name, cfg.Model.Path, r.Stderr)
	if err != nil {
		fmt.Fprintf(r.Stderr, "\nerror: %v\n", err)
		logger.Error("model download failed", "model", name, "error", err.Error())
		return 1
	}
	fmt.Fprintln(r.Stderr)
	fmt.Fprintln(r.Stdout, path)
	logger.Info("model ready", "model", name, "path", path)
	return 0
}

func (r Runner) commandHistory(ctx context.Context, cfg config.Config, limit int, logger *slog.Logger) int {
	if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(r.Stdout, "no sessions recorded")
		return 0
	}

	store, err := history.Open(ctx, cfg.History.Path, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.Stdout, "no sessions recorded")
		return 0
	}
	for _, entry := range entries {
		fmt.Fprintln(r.Stdout, formatEntry(entry))
	}
	return 0
}

func formatEntry(entry history.Entry) string {
	line := fmt.Sprintf("%s  %-16s %6.1fs",
		entry.StartedAt.Local().Format(time.DateTime),
		entry.Outcome,
		entry.FinishedAt.Sub(entry.StartedAt).Seconds(),
	)
	if text := strings.TrimSpace(entry.Text); text != "" {
		line += "  " + text
	}
	return line
}
