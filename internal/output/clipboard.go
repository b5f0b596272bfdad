package output

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/atotto/clipboard"
	"github.com/rbright/whisper-dictate/internal/config"
)

var clipboardTools = []tool{
	{name: "wl-copy", argInput: true},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "pbcopy"},
}

// Clipboard writes text to the system clipboard.
type Clipboard struct {
	argv     []string
	lookPath func(string) (string, error)
	library  func(string) error
}

// NewClipboard builds a clipboard sink. A configured command replaces tool probing.
func NewClipboard(cmd config.CommandConfig) *Clipboard {
	c := &Clipboard{argv: cmd.Argv, lookPath: exec.LookPath}
	if !clipboard.Unsupported {
		c.library = clipboard.WriteAll
	}
	return c
}

// Describe names the mechanism Write would use.
func (c *Clipboard) Describe() (string, error) {
	if len(c.argv) > 0 {
		return c.argv[0] + " (configured)", nil
	}
	if candidate, path, ok := probe(c.lookPath, clipboardTools); ok {
		return fmt.Sprintf("%s (%s)", candidate.name, path), nil
	}
	if c.library != nil {
		return "clipboard library", nil
	}
	return "", fmt.Errorf("%w: none of wl-copy, xclip, pbcopy found", ErrSinkUnavailable)
}

// Write copies text to the clipboard.
func (c *Clipboard) Write(ctx context.Context, text string) error {
	if len(c.argv) > 0 {
		return runCommandWithInput(ctx, c.argv, text)
	}
	if candidate, path, ok := probe(c.lookPath, clipboardTools); ok {
		return runCommandWithInput(ctx, candidate.argv(path, text), candidate.stdin(text))
	}
	if c.library != nil {
		if err := c.library(text); err != nil {
			return fmt.Errorf("clipboard library: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: none of wl-copy, xclip, pbcopy found", ErrSinkUnavailable)
}
