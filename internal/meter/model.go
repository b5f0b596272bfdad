// Package meter renders the live input-level visualizer in the terminal.
package meter

import (
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	barCount     = 4
	barRows      = 6
	barWidth     = 2
	tickInterval = 30 * time.Millisecond
	phaseStep    = 0.15
	barOffset    = 0.8
	baseHeight   = 0.2
)

const (
	labelListening  = "Listening..."
	labelProcessing = "Processing..."
	hintStop        = "esc/space to stop"
)

type tickMsg time.Time

type processingMsg struct{}

type statusMsg string

type hideMsg struct{}

// levelSource is written by the controller and read on every tick.
type levelSource struct {
	bits atomic.Uint64
}

func (l *levelSource) store(level float64) {
	l.bits.Store(math.Float64bits(level))
}

func (l *levelSource) load() float64 {
	return math.Float64frombits(l.bits.Load())
}

// Model is the bubbletea model for the level visualizer.
type Model struct {
	theme    Theme
	levels   *levelSource
	stop     func()
	stopped  bool
	position string
	margin   int

	level      float64
	phase      float64
	processing bool
	status     string

	width  int
	height int
}

func newModel(theme Theme, position string, margin int, levels *levelSource, stop func()) Model {
	if stop == nil {
		stop = func() {}
	}
	return Model{
		theme:    theme,
		levels:   levels,
		stop:     stop,
		position: position,
		margin:   margin,
		status:   labelListening,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the animation clock.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles keys, animation ticks, and controller notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", " ", "space", "ctrl+c":
			if !m.stopped && !m.processing {
				m.stopped = true
				m.stop()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.phase += phaseStep
		if m.levels != nil && !m.processing {
			m.level = visibleLevel(m.levels.load())
		}
		return m, tick()
	case processingMsg:
		m.processing = true
		m.status = labelProcessing
		m.level = 0
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case hideMsg:
		return m, tea.Quit
	}
	return m, nil
}

// View renders the bars, the status label, and the vertical placement.
func (m Model) View() string {
	block := lipgloss.JoinVertical(lipgloss.Center, m.renderBars(), m.renderStatus())

	if m.height <= 0 {
		return block
	}

	pad := strings.Repeat("\n", max(m.margin, 0))
	if m.position == "top" {
		return lipgloss.PlaceVertical(m.height, lipgloss.Top, pad+block)
	}
	return lipgloss.PlaceVertical(m.height, lipgloss.Bottom, block+pad)
}

func (m Model) renderBars() string {
	heights := barHeights(m.level, m.phase)
	columns := make([]string, barCount)
	for i, h := range heights {
		filled := int(math.Round(h * barRows))
		style := lipgloss.NewStyle().Foreground(m.theme.Bars[i])

		rows := make([]string, barRows)
		for row := range rows {
			if barRows-row <= filled {
				rows[row] = style.Render(strings.Repeat("█", barWidth))
			} else {
				rows[row] = strings.Repeat(" ", barWidth)
			}
		}
		columns[i] = strings.Join(rows, "\n")
	}

	spaced := make([]string, 0, barCount*2-1)
	for i, column := range columns {
		if i > 0 {
			spaced = append(spaced, " ")
		}
		spaced = append(spaced, column)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, spaced...)
}

func (m Model) renderStatus() string {
	label := statusStyle.Render(m.status)
	if m.processing || m.stopped {
		return label
	}
	return label + " " + hintStyle.Render(hintStop)
}

var (
	statusStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// visibleLevel doubles the raw level so speech fills the bars, capped at 1.
func visibleLevel(level float64) float64 {
	return math.Max(0, math.Min(1, level*2))
}

// barHeights returns each bar's fraction of full height for a level and animation phase.
func barHeights(level float64, phase float64) [barCount]float64 {
	var heights [barCount]float64
	for i := range heights {
		wave := math.Sin(phase+float64(i)*barOffset)*0.5 + 0.5
		heights[i] = baseHeight + wave*level*(1-baseHeight)
	}
	return heights
}
