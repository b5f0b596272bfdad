package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrSinkUnavailable reports that no tool for a delivery sink could be found.
var ErrSinkUnavailable = errors.New("output sink unavailable")

const commandTimeout = 2 * time.Second

// tool is a probed external command. Text goes on stdin or as the trailing argument.
type tool struct {
	name     string
	args     []string
	argInput bool
}

// argv returns the full command for delivering text.
func (t tool) argv(path string, text string) []string {
	argv := append([]string{path}, t.args...)
	if t.argInput {
		argv = append(argv, text)
	}
	return argv
}

// stdin returns the payload written to stdin for delivering text.
func (t tool) stdin(text string) string {
	if t.argInput {
		return ""
	}
	return text
}

// probe returns the first tool present on PATH.
func probe(lookPath func(string) (string, error), tools []tool) (tool, string, bool) {
	for _, candidate := range tools {
		if path, err := lookPath(candidate.name); err == nil {
			return candidate, path, true
		}
	}
	return tool{}, "", false
}

// runCommandWithInput executes argv and optionally writes input to stdin.
// Stderr goes to a temp file so a resident child (wl-copy, xclip) holding it
// open cannot stall Wait.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	stderr, err := os.CreateTemp("", "whisper-dictate-cmd-*.stderr")
	if err != nil {
		return fmt.Errorf("create stderr file for %s: %w", argv[0], err)
	}
	defer func() {
		_ = stderr.Close()
		_ = os.Remove(stderr.Name())
	}()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = commandTimeout
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	err = cmd.Wait()
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		err = nil
	}
	if err != nil {
		if detail := readStderr(stderr); detail != "" {
			return fmt.Errorf("wait for %s: %w: %s", argv[0], err, detail)
		}
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}

func readStderr(f *os.File) string {
	data, err := os.ReadFile(f.Name())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
