package meter

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, stop func()) (Model, *levelSource) {
	t.Helper()
	theme, err := ThemeByName("google")
	require.NoError(t, err)
	levels := &levelSource{}
	return newModel(theme, "bottom", 1, levels, stop), levels
}

func TestStopKeysCallStopOnce(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeySpace, Runes: []rune{' '}},
		{Type: tea.KeyCtrlC},
	} {
		calls := 0
		m, _ := testModel(t, func() { calls++ })

		updated, cmd := m.Update(key)
		require.Nil(t, cmd)
		m = updated.(Model)
		require.Equal(t, 1, calls, key.String())

		updated, _ = m.Update(key)
		m = updated.(Model)
		require.Equal(t, 1, calls, key.String())
		require.True(t, m.stopped)
	}
}

func TestOtherKeysAreIgnored(t *testing.T) {
	calls := 0
	m, _ := testModel(t, func() { calls++ })

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.False(t, updated.(Model).stopped)
	require.Zero(t, calls)
}

func TestKeysIgnoredWhileProcessing(t *testing.T) {
	calls := 0
	m, _ := testModel(t, func() { calls++ })

	updated, _ := m.Update(processingMsg{})
	updated, _ = updated.(Model).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Zero(t, calls)
	require.Equal(t, labelProcessing, updated.(Model).status)
}

func TestTickAdvancesPhaseAndReadsLevel(t *testing.T) {
	m, levels := testModel(t, nil)
	levels.store(0.3)

	updated, cmd := m.Update(tickMsg{})
	require.NotNil(t, cmd)
	m = updated.(Model)
	require.InDelta(t, phaseStep, m.phase, 1e-9)
	require.InDelta(t, 0.6, m.level, 1e-9)

	levels.store(0.9)
	updated, _ = m.Update(tickMsg{})
	m = updated.(Model)
	require.InDelta(t, 2*phaseStep, m.phase, 1e-9)
	require.InDelta(t, 1.0, m.level, 1e-9)
}

func TestProcessingFreezesLevel(t *testing.T) {
	m, levels := testModel(t, nil)
	levels.store(0.4)

	updated, _ := m.Update(processingMsg{})
	updated, _ = updated.(Model).Update(tickMsg{})
	require.Zero(t, updated.(Model).level)
	require.Contains(t, updated.(Model).View(), labelProcessing)
}

func TestHideQuits(t *testing.T) {
	m, _ := testModel(t, nil)

	_, cmd := m.Update(hideMsg{})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestBarHeights(t *testing.T) {
	silent := barHeights(0, 1.7)
	for _, h := range silent {
		require.InDelta(t, baseHeight, h, 1e-9)
	}

	loud := barHeights(1, 0)
	for _, h := range loud {
		require.GreaterOrEqual(t, h, baseHeight)
		require.LessOrEqual(t, h, 1.0)
	}
	require.NotEqual(t, loud[0], loud[1])
}

func TestVisibleLevelClamps(t *testing.T) {
	require.Equal(t, 0.0, visibleLevel(-1))
	require.InDelta(t, 0.5, visibleLevel(0.25), 1e-9)
	require.Equal(t, 1.0, visibleLevel(0.8))
}

func TestViewPlacement(t *testing.T) {
	m, _ := testModel(t, nil)
	require.Contains(t, m.View(), labelListening)
	require.Contains(t, m.View(), hintStop)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	bottom := updated.(Model).View()
	lines := strings.Split(bottom, "\n")
	require.Len(t, lines, 20)
	require.Empty(t, strings.TrimSpace(lines[0]))
	require.Empty(t, strings.TrimSpace(lines[len(lines)-1]))
	require.Contains(t, lines[len(lines)-2], labelListening)

	top := updated.(Model)
	top.position = "top"
	lines = strings.Split(top.View(), "\n")
	require.Empty(t, strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1+barRows], labelListening)
}

func TestStatusMessageReplacesLabel(t *testing.T) {
	m, _ := testModel(t, nil)
	updated, _ := m.Update(statusMsg("Transcription failed"))
	require.Contains(t, updated.(Model).View(), "Transcription failed")
}

func TestThemes(t *testing.T) {
	require.Equal(t, []string{"blue", "google", "mono", "purple"}, ThemeNames())
	_, err := ThemeByName("neon")
	require.Error(t, err)
}

func TestNewRejectsUnknownTheme(t *testing.T) {
	_, err := New(Options{Theme: "neon"})
	require.Error(t, err)
}
