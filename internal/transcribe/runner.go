// Package transcribe runs the external whisper executable against a captured WAV artifact.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FailureKind classifies a failed transcription.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureTimeout     FailureKind = "timeout"
	FailureProcess     FailureKind = "process_error"
	FailureEmptyOutput FailureKind = "empty_output"
)

var (
	ErrTimeout     = errors.New("transcription timed out")
	ErrProcess     = errors.New("transcription process failed")
	ErrEmptyOutput = errors.New("transcription produced no text")
)

// waitDelay bounds pipe draining after the process has been killed.
const waitDelay = 2 * time.Second

// Result is the outcome of one Transcribe call.
type Result struct {
	Text     string
	Failure  FailureKind
	Err      error
	Duration time.Duration
}

// OK reports whether the result carries usable text.
func (r Result) OK() bool {
	return r.Failure == FailureNone && r.Text != ""
}

// Options configures a Runner.
type Options struct {
	CLI       string
	ModelPath string
	Logger    *slog.Logger
}

// Runner invokes a resolved whisper executable.
type Runner struct {
	executable string
	modelPath  string
	logger     *slog.Logger
}

// New resolves the executable once and returns a ready Runner.
func New(opts Options) (*Runner, error) {
	executable, err := Discover(opts.CLI)
	if err != nil {
		return nil, err
	}
	return &Runner{
		executable: executable,
		modelPath:  opts.ModelPath,
		logger:     opts.Logger,
	}, nil
}

// Executable returns the resolved executable path.
func (r *Runner) Executable() string {
	return r.executable
}

// ModelPath returns the model file passed to the executable.
func (r *Runner) ModelPath() string {
	return r.modelPath
}

// Transcribe runs the executable against audioPath and blocks until it exits or timeout elapses.
func (r *Runner) Transcribe(ctx context.Context, audioPath string, language string, threads int, timeout time.Duration) Result {
	started := time.Now()
	result := r.run(ctx, audioPath, language, threads, timeout)
	result.Duration = time.Since(started)

	if r.logger != nil {
		attrs := []any{
			"duration_ms", result.Duration.Milliseconds(),
			"chars", len(result.Text),
		}
		if result.Failure != FailureNone {
			attrs = append(attrs, "failure", string(result.Failure), "error", result.Err.Error())
			r.logger.Warn("transcription failed", attrs...)
		} else {
			r.logger.Debug("transcription output", attrs...)
		}
	}
	return result
}

func (r *Runner) run(ctx context.Context, audioPath string, language string, threads int, timeout time.Duration) Result {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.executable, r.args(audioPath, language, threads)...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return Result{
			Failure: FailureTimeout,
			Err:     fmt.Errorf("%w after %s", ErrTimeout, timeout),
		}
	}
	if err != nil {
		return Result{
			Failure: FailureProcess,
			Err:     fmt.Errorf("%w: %s: %w%s", ErrProcess, r.executable, err, stderrSuffix(stderr.String())),
		}
	}

	text := Clean(stdout.String())
	if text == "" {
		return Result{Failure: FailureEmptyOutput, Err: ErrEmptyOutput}
	}
	return Result{Text: text}
}

func (r *Runner) args(audioPath string, language string, threads int) []string {
	args := []string{"-m", r.modelPath, "-f", audioPath, "--no-timestamps"}
	if threads > 0 {
		args = append(args, "-t", strconv.Itoa(threads))
	}
	if language != "" {
		args = append(args, "--language", language)
	}
	return args
}

func stderrSuffix(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	const limit = 400
	if len(stderr) > limit {
		stderr = stderr[len(stderr)-limit:]
	}
	return ": " + stderr
}
