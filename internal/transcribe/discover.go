package transcribe

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrExecutableNotFound reports that no whisper executable could be resolved.
var ErrExecutableNotFound = errors.New("whisper executable not found")

// Candidates are probed on PATH in order.
var Candidates = []string{"whisper-cli", "whisper", "main"}

// fallbackPaths lists install locations checked after PATH lookup fails.
var fallbackPaths = func() []string {
	paths := []string{"/usr/bin/whisper-cli", "/usr/local/bin/whisper-cli"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".local", "bin", "whisper-cli"))
	}
	return paths
}

// Discover resolves the whisper executable.
// A non-empty override wins; otherwise PATH candidates then fallback paths are tried.
func Discover(override string) (string, error) {
	override = strings.TrimSpace(override)
	if override != "" {
		path, err := exec.LookPath(expandHome(override))
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrExecutableNotFound, override, err)
		}
		return path, nil
	}

	for _, name := range Candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	for _, path := range fallbackPaths() {
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w (tried %s on PATH)", ErrExecutableNotFound, strings.Join(Candidates, ", "))
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
