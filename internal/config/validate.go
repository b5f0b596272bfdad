package config

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Themes lists the accepted ui.theme values.
var Themes = []string{"google", "blue", "purple", "mono"}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	switch cfg.General.OutputMode {
	case OutputClipboard, OutputType:
	default:
		return nil, fmt.Errorf("general.output_mode must be one of: %s, %s", OutputClipboard, OutputType)
	}
	if strings.TrimSpace(cfg.General.Language) == "" {
		return nil, fmt.Errorf("general.language must not be empty")
	}
	if strings.TrimSpace(cfg.Model.Name) == "" {
		return nil, fmt.Errorf("model.name must not be empty")
	}
	if cfg.Transcription.Threads <= 0 {
		return nil, fmt.Errorf("transcription.threads must be > 0")
	}
	if cfg.Transcription.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("transcription.timeout must be > 0")
	}
	if cfg.Transcription.MaxDurationSeconds < 0 {
		return nil, fmt.Errorf("transcription.max_duration must be >= 0")
	}
	if cfg.UI.Position != "top" && cfg.UI.Position != "bottom" {
		return nil, fmt.Errorf("ui.position must be one of: top, bottom")
	}
	if cfg.UI.EdgeMargin < 0 {
		return nil, fmt.Errorf("ui.edge_margin must be >= 0")
	}
	if !knownTheme(cfg.UI.Theme) {
		return nil, fmt.Errorf("ui.theme must be one of: %s", strings.Join(Themes, ", "))
	}
	if strings.TrimSpace(cfg.Instance.MarkerPath) == "" {
		return nil, fmt.Errorf("instance.marker_path must not be empty")
	}
	if cfg.Clipboard.Raw != "" && !strings.HasPrefix(strings.TrimSpace(cfg.Clipboard.Raw), "#") && len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd is configured but empty")
	}
	if cfg.TypeCmd.Raw != "" && !strings.HasPrefix(strings.TrimSpace(cfg.TypeCmd.Raw), "#") && len(cfg.TypeCmd.Argv) == 0 {
		return nil, fmt.Errorf("type_cmd is configured but empty")
	}

	if cli := strings.TrimSpace(cfg.Transcription.WhisperCLI); cli != "" && !filepath.IsAbs(cli) {
		if _, err := exec.LookPath(cli); err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("transcription.whisper_cli %q is not on PATH", cli)})
		}
	}
	if cfg.History.Enable && strings.TrimSpace(cfg.History.Path) == "" {
		warnings = append(warnings, Warning{Message: "history.enable is set but history.path is empty; history disabled"})
	}

	return warnings, nil
}

func knownTheme(name string) bool {
	for _, theme := range Themes {
		if theme == name {
			return true
		}
	}
	return false
}
