package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
)

const (
	cueSampleRate = 16000
	cueVolume     = 0.16
	cueGap        = 20 * time.Millisecond
	// cueRamp bounds the attack and release envelope to avoid clicks.
	cueRamp = 5 * time.Millisecond
)

// note is one sine segment of a cue.
type note struct {
	hz       float64
	duration time.Duration
}

// cueNotes rises for start and completion and falls for stop and failure.
var cueNotes = map[cueKind][]note{
	cueStart:    {{hz: 784, duration: 60 * time.Millisecond}, {hz: 1047, duration: 80 * time.Millisecond}},
	cueStop:     {{hz: 1047, duration: 60 * time.Millisecond}, {hz: 784, duration: 80 * time.Millisecond}},
	cueComplete: {{hz: 880, duration: 110 * time.Millisecond}},
	cueCancel:   {{hz: 440, duration: 80 * time.Millisecond}, {hz: 330, duration: 110 * time.Millisecond}},
}

var cuePCM = func() map[cueKind][]int16 {
	rendered := make(map[cueKind][]int16, len(cueNotes))
	for kind, notes := range cueNotes {
		rendered[kind] = renderNotes(notes)
	}
	return rendered
}()

func emitCue(kind cueKind) error {
	samples := cuePCM[kind]
	if len(samples) == 0 {
		return nil
	}
	return playPCM(samples)
}

// playPCM plays mono 16 kHz samples on a short-lived pulse playback stream.
func playPCM(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("whisper-dictate"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	remaining := samples
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, remaining)
		remaining = remaining[n:]
		if len(remaining) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("whisper-dictate cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return nil
}

func renderNotes(notes []note) []int16 {
	gap := sampleCount(cueGap)
	var pcm []int16
	for i, n := range notes {
		if i > 0 {
			pcm = append(pcm, make([]int16, gap)...)
		}
		pcm = append(pcm, renderNote(n)...)
	}
	return pcm
}

func renderNote(n note) []int16 {
	count := sampleCount(n.duration)
	if count <= 0 || n.hz <= 0 {
		return nil
	}

	ramp := sampleCount(cueRamp)
	if ramp > count/2 {
		ramp = count / 2
	}

	pcm := make([]int16, count)
	for i := range pcm {
		gain := 1.0
		if edge := min(i, count-1-i); ramp > 0 && edge < ramp {
			gain = float64(edge) / float64(ramp)
		}
		phase := 2 * math.Pi * n.hz * float64(i) / cueSampleRate
		pcm[i] = int16(math.Round(math.Sin(phase) * cueVolume * gain * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
