// Package output delivers transcripts to the clipboard and, optionally, as typed keystrokes.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rbright/whisper-dictate/internal/config"
)

// Committer applies transcript delivery side effects (clipboard + optional typing).
type Committer struct {
	clipboard *Clipboard
	typer     *Typer
	typeText  bool
	logger    *slog.Logger
}

// NewCommitter constructs a transcript committer from runtime config.
func NewCommitter(cfg config.Config, logger *slog.Logger) *Committer {
	return &Committer{
		clipboard: NewClipboard(cfg.Clipboard),
		typer:     NewTyper(cfg.TypeCmd),
		typeText:  cfg.General.OutputMode == config.OutputType,
		logger:    logger,
	}
}

// Commit writes transcript text to the clipboard and types it when output_mode=type.
// Both sinks are attempted; their errors are joined.
func (c *Committer) Commit(ctx context.Context, transcript string) error {
	if transcript == "" {
		return nil
	}

	var errs []error
	if err := c.clipboard.Write(ctx, transcript); err != nil {
		errs = append(errs, fmt.Errorf("set clipboard: %w", err))
	} else if c.logger != nil {
		c.logger.Debug("clipboard set", "chars", len(transcript))
	}

	if c.typeText {
		if err := c.typer.Type(ctx, transcript); err != nil {
			errs = append(errs, fmt.Errorf("type text: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DisplayServer reports "wayland", "x11", or "unknown" from the session environment.
func DisplayServer() string {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return "wayland"
	}
	if os.Getenv("DISPLAY") != "" {
		return "x11"
	}
	return "unknown"
}
