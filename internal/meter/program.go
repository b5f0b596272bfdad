package meter

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	tea "github.com/charmbracelet/bubbletea"
)

// Options configure the visualizer program.
type Options struct {
	Theme      string
	Position   string
	EdgeMargin int
	// Stop is called once when the user presses esc, space, or ctrl+c.
	Stop   func()
	Input  io.Reader
	Output io.Writer
}

// Program runs the visualizer and satisfies the session level and indicator contracts.
type Program struct {
	program *tea.Program
	levels  *levelSource

	startOnce sync.Once
	started   chan struct{}
	done      chan struct{}
	err       error
}

// Enabled reports whether the visualizer can draw on stderr.
func Enabled() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New builds the program. Nothing is drawn until Start or ShowRecording.
func New(opts Options) (*Program, error) {
	theme, err := ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	levels := &levelSource{}
	model := newModel(theme, opts.Position, opts.EdgeMargin, levels, opts.Stop)

	programOpts := []tea.ProgramOption{
		tea.WithOutput(output),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}

	return &Program{
		program: tea.NewProgram(model, programOpts...),
		levels:  levels,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start runs the event loop in the background. Later calls are no-ops.
func (p *Program) Start() {
	p.startOnce.Do(func() {
		close(p.started)
		go func() {
			defer close(p.done)
			_, p.err = p.program.Run()
		}()
	})
}

// Wait blocks until a started program exits and returns its error.
func (p *Program) Wait() error {
	if !p.isStarted() {
		return nil
	}
	<-p.done
	return p.err
}

func (p *Program) isStarted() bool {
	select {
	case <-p.started:
		return true
	default:
		return false
	}
}

// send drops messages for a program that never started.
func (p *Program) send(msg tea.Msg) {
	if p.isStarted() {
		p.program.Send(msg)
	}
}

// ObserveLevel publishes the latest level; it never blocks.
func (p *Program) ObserveLevel(level float64) {
	p.levels.store(level)
}

// ShowRecording starts drawing once the session owns the microphone.
func (p *Program) ShowRecording(context.Context) {
	p.Start()
}

func (p *Program) ShowTranscribing(context.Context) {
	p.send(processingMsg{})
}

func (p *Program) ShowTranscript(context.Context, string) {}

func (p *Program) ShowError(_ context.Context, text string) {
	p.send(statusMsg(text))
}

func (p *Program) CueStop(context.Context)     {}
func (p *Program) CueComplete(context.Context) {}
func (p *Program) CueCancel(context.Context)   {}

// Hide quits the program and waits for the terminal to be restored.
func (p *Program) Hide(ctx context.Context) {
	if !p.isStarted() {
		return
	}
	p.send(hideMsg{})
	select {
	case <-p.done:
	case <-ctx.Done():
		p.program.Kill()
	}
}

// StopSource labels stop requests made from the keyboard.
const StopSource = "keypress"
