package output

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rbright/whisper-dictate/internal/config"
)

var typeTools = []tool{
	{name: "ydotool", args: []string{"type", "--file", "-"}},
	{name: "xdotool", args: []string{"type", "--"}, argInput: true},
}

// Typer simulates keyboard input of text into the focused window.
type Typer struct {
	argv     []string
	lookPath func(string) (string, error)
}

// NewTyper builds a typing sink. A configured command receives text on stdin.
func NewTyper(cmd config.CommandConfig) *Typer {
	return &Typer{argv: cmd.Argv, lookPath: exec.LookPath}
}

// Describe names the mechanism Type would use.
func (t *Typer) Describe() (string, error) {
	if len(t.argv) > 0 {
		return t.argv[0] + " (configured)", nil
	}
	if candidate, path, ok := probe(t.lookPath, typeTools); ok {
		return fmt.Sprintf("%s (%s)", candidate.name, path), nil
	}
	return "", fmt.Errorf("%w: none of ydotool, xdotool found", ErrSinkUnavailable)
}

// Type sends text as keystrokes.
func (t *Typer) Type(ctx context.Context, text string) error {
	if len(t.argv) > 0 {
		return runCommandWithInput(ctx, t.argv, text)
	}
	if candidate, path, ok := probe(t.lookPath, typeTools); ok {
		return runCommandWithInput(ctx, candidate.argv(path, text), candidate.stdin(text))
	}
	return fmt.Errorf("%w: none of ydotool, xdotool found", ErrSinkUnavailable)
}
