package instance

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type recordingHandle struct {
	mu         sync.Mutex
	stops      []string
	terminates int
}

func (h *recordingHandle) RequestStop(source string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops = append(h.stops, source)
}

func (h *recordingHandle) Terminate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terminates++
}

func (h *recordingHandle) snapshot() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.stops...), h.terminates
}

func TestForwardMapsSignalsToHandle(t *testing.T) {
	signals := make(chan os.Signal, 4)
	handle := &recordingHandle{}
	unregistered := false

	stop := forward(signals, handle, func() { unregistered = true })

	signals <- unix.SIGUSR1
	signals <- unix.SIGTERM
	signals <- unix.SIGINT

	require.Eventually(t, func() bool {
		stops, terminates := handle.snapshot()
		return len(stops) == 1 && terminates == 2
	}, time.Second, 5*time.Millisecond)

	stops, _ := handle.snapshot()
	require.Equal(t, []string{SourcePeer}, stops)

	stop()
	stop()
	require.True(t, unregistered)
}

func TestWatchDeliversRealSIGUSR1(t *testing.T) {
	handle := &recordingHandle{}
	stop := Watch(handle)
	defer stop()

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGUSR1))

	require.Eventually(t, func() bool {
		stops, _ := handle.snapshot()
		return len(stops) == 1
	}, 2*time.Second, 5*time.Millisecond)
}
