package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCuePCMPresentForEveryKind(t *testing.T) {
	for _, kind := range []cueKind{cueStart, cueStop, cueComplete, cueCancel} {
		require.NotEmpty(t, cuePCM[kind], "cue %d", kind)
	}
	require.Empty(t, cuePCM[cueKind(99)])
}

func TestRenderNoteLengthAndEnvelope(t *testing.T) {
	pcm := renderNote(note{hz: 440, duration: 100 * time.Millisecond})
	require.Len(t, pcm, sampleCount(100*time.Millisecond))
	require.Zero(t, pcm[0])
	require.Zero(t, pcm[len(pcm)-1])

	peak := 0
	for _, s := range pcm {
		peak = max(peak, int(math.Abs(float64(s))))
	}
	require.LessOrEqual(t, peak, int(math.Floor(cueVolume*math.MaxInt16))+1)
	require.Greater(t, peak, 0)
}

func TestRenderNoteInvalidReturnsEmpty(t *testing.T) {
	require.Empty(t, renderNote(note{hz: 0, duration: 100 * time.Millisecond}))
	require.Empty(t, renderNote(note{hz: 440, duration: 0}))
}

func TestRenderNotesInsertsGaps(t *testing.T) {
	notes := []note{{hz: 440, duration: 50 * time.Millisecond}, {hz: 660, duration: 50 * time.Millisecond}}
	want := 2*sampleCount(50*time.Millisecond) + sampleCount(cueGap)
	require.Len(t, renderNotes(notes), want)
}

func TestSampleCount(t *testing.T) {
	require.Equal(t, 0, sampleCount(0))
	require.Equal(t, 16000, sampleCount(time.Second))
	require.Equal(t, 400, sampleCount(25*time.Millisecond))
}
