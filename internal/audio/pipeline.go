package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// ErrAlreadyCapturing is returned when Start is called on an active pipeline.
var ErrAlreadyCapturing = errors.New("audio pipeline already capturing")

// Options configures a Pipeline.
type Options struct {
	Logger *slog.Logger
	// TempDir holds WAV artifacts; empty means os.TempDir.
	TempDir string
}

// Pipeline records one selected Pulse source into an in-memory buffer and
// finalizes it as a WAV artifact.
type Pipeline struct {
	device  Device
	logger  *slog.Logger
	tempDir string

	client *pulse.Client
	source *pulse.Source

	streamMu sync.Mutex
	stream   *pulse.RecordStream

	capture capture

	artifactMu sync.Mutex
	artifact   string

	teardownOnce sync.Once
}

// Open connects to Pulse and resolves the capture source. No audio flows until Start.
func Open(_ context.Context, device Device, opts Options) (*Pipeline, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	return &Pipeline{
		device:  device,
		logger:  opts.Logger,
		tempDir: opts.TempDir,
		client:  client,
		source:  source,
	}, nil
}

// Device returns the capture source metadata.
func (p *Pipeline) Device() Device {
	return p.device
}

// BytesCaptured reports PCM bytes accepted since the last Start.
func (p *Pipeline) BytesCaptured() int64 {
	return p.capture.bytes.Load()
}

// Start opens a 16kHz mono s16 record stream and begins buffering.
func (p *Pipeline) Start(onLevel LevelFunc) error {
	if !p.capture.begin(onLevel) {
		return ErrAlreadyCapturing
	}
	if p.client == nil {
		return nil
	}

	writer := pulse.NewWriter(&p.capture, pulseproto.FormatInt16LE)
	stream, err := p.client.NewRecord(
		writer,
		pulse.RecordSource(p.source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(chunkSizeBytes),
		pulse.RecordMediaName("whisper-dictate recording"),
	)
	if err != nil {
		_ = p.capture.finish()
		return fmt.Errorf("create pulse record stream: %w", err)
	}

	p.streamMu.Lock()
	p.stream = stream
	p.streamMu.Unlock()

	stream.Start()
	if p.logger != nil {
		p.logger.Debug("audio capture started", "device", p.device.ID)
	}
	return nil
}

// Stop halts the stream and finalizes the buffer.
//
// It returns nil when nothing was captured or the pipeline was not capturing.
func (p *Pipeline) Stop() (*Artifact, error) {
	if !p.capture.active() {
		return nil, nil
	}

	p.closeStream()
	pcm := p.capture.finish()
	if len(pcm) == 0 {
		return nil, nil
	}

	artifact, err := writeArtifact(p.tempDir, pcm)
	if err != nil {
		return nil, err
	}

	p.artifactMu.Lock()
	p.artifact = artifact.Path
	p.artifactMu.Unlock()
	return artifact, nil
}

// CleanupArtifact removes the last WAV artifact. Missing files are ignored.
func (p *Pipeline) CleanupArtifact() {
	p.artifactMu.Lock()
	path := p.artifact
	p.artifact = ""
	p.artifactMu.Unlock()

	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) && p.logger != nil {
		p.logger.Warn("remove audio artifact failed", "path", path, "error", err.Error())
	}
}

// Teardown releases the Pulse connection. Only the first call has effect.
func (p *Pipeline) Teardown() {
	p.teardownOnce.Do(func() {
		p.closeStream()
		_ = p.capture.finish()
		if p.client != nil {
			p.client.Close()
		}
	})
}

// closeStream stops then closes the active record stream, if any.
func (p *Pipeline) closeStream() {
	p.streamMu.Lock()
	stream := p.stream
	p.stream = nil
	p.streamMu.Unlock()

	if stream == nil {
		return
	}
	stream.Stop()
	stream.Close()
}
