package audio

import (
	"io"
	"sync"
	"sync/atomic"
)

// Fixed capture format.
const (
	SampleRate     = 16000
	Channels       = 1
	bytesPerSample = 2
	ChunkSamples   = 1024
	chunkSizeBytes = ChunkSamples * bytesPerSample
)

// LevelFunc receives one level per captured chunk. It runs on the audio
// callback context and must not block.
type LevelFunc func(level float64)

// capture is the append-only chunk buffer fed by the Pulse callback.
type capture struct {
	mu        sync.Mutex
	capturing bool
	chunks    [][]byte
	pending   []byte
	onLevel   LevelFunc

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// begin resets the buffer and starts accepting PCM.
func (c *capture) begin(onLevel LevelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capturing {
		return false
	}
	c.capturing = true
	c.chunks = nil
	c.pending = nil
	c.onLevel = onLevel
	c.bytes.Store(0)
	return true
}

func (c *capture) active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// Write receives raw PCM from Pulse, appends whole chunks, and emits their levels.
func (c *capture) Write(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Add under the same mutex as capturing so finish can Wait safely.
	c.inflight.Add(1)
	defer c.inflight.Done()

	c.pending = append(c.pending, buffer...)
	var levels []float64
	for len(c.pending) >= chunkSizeBytes {
		chunk := make([]byte, chunkSizeBytes)
		copy(chunk, c.pending[:chunkSizeBytes])
		c.pending = c.pending[chunkSizeBytes:]
		c.chunks = append(c.chunks, chunk)
		levels = append(levels, Level(chunk))
	}
	onLevel := c.onLevel
	c.mu.Unlock()

	c.bytes.Add(int64(len(buffer)))

	if onLevel != nil {
		for _, level := range levels {
			onLevel(level)
		}
	}
	return len(buffer), nil
}

// finish stops accepting PCM and returns the concatenated buffer, including
// any trailing partial chunk. It returns nil when nothing was captured or
// capture was not active.
func (c *capture) finish() []byte {
	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return nil
	}
	c.capturing = false
	c.mu.Unlock()

	c.inflight.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	size := len(c.pending)
	for _, chunk := range c.chunks {
		size += len(chunk)
	}
	if size == 0 {
		return nil
	}

	pcm := make([]byte, 0, size)
	for _, chunk := range c.chunks {
		pcm = append(pcm, chunk...)
	}
	pcm = append(pcm, c.pending...)
	c.chunks = nil
	c.pending = nil
	c.onLevel = nil
	return pcm
}
