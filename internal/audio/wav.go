package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Artifact is a finalized WAV recording on disk.
type Artifact struct {
	Path     string
	Bytes    int64
	Duration time.Duration
}

// writeArtifact encodes pcm as a 16-bit mono WAV in a fresh temporary file.
func writeArtifact(dir string, pcm []byte) (*Artifact, error) {
	f, err := os.CreateTemp(dir, "whisper-dictate-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create audio artifact: %w", err)
	}

	if err := writePCM16WAV(f, pcm); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("close audio artifact: %w", err)
	}

	samples := len(pcm) / bytesPerSample
	return &Artifact{
		Path:     f.Name(),
		Bytes:    int64(len(pcm)),
		Duration: time.Duration(samples) * time.Second / SampleRate,
	}, nil
}

// writePCM16WAV writes little-endian s16 pcm through the go-audio encoder.
func writePCM16WAV(f *os.File, pcm []byte) error {
	if len(pcm)%bytesPerSample != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	data := make([]int, len(pcm)/bytesPerSample)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:])))
	}
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, SampleRate, 16, Channels, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
