package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "whisper-dictate"

// ResolvePath applies CLI/XDG/home fallback rules for config.yaml location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir, "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", appDir, "config.yaml"), nil
}

// ModelsDir is the default directory for downloaded ggml model files.
func ModelsDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "models")
}

// StateDir holds logs, history, and other runtime state.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

// HistoryPath is the default session history database location.
func HistoryPath() string {
	return filepath.Join(StateDir(), "history.sqlite")
}

// ExpandUser replaces a leading ~ with the user home directory.
func ExpandUser(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(raw, "~"))
}

// xdgDir resolves $env/whisper-dictate, falling back to ~/<fallback...>/whisper-dictate.
func xdgDir(env string, fallback ...string) string {
	if xdg := strings.TrimSpace(os.Getenv(env)); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(append(fallback, appDir)...)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appDir)...)
}
