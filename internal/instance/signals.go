package instance

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// Handle receives asynchronous session requests. Implementations must only enqueue.
type Handle interface {
	RequestStop(source string)
	Terminate()
}

// Stop sources reported to Handle.RequestStop.
const (
	SourcePeer = "peer_signal"
)

// Watch forwards SIGUSR1 as a stop request and SIGTERM/SIGINT as termination.
//
// The returned function unregisters the handlers and waits for the forwarder to exit.
func Watch(handle Handle) func() {
	signals := make(chan os.Signal, 4)
	signal.Notify(signals, unix.SIGUSR1, unix.SIGTERM, unix.SIGINT)
	return forward(signals, handle, func() { signal.Stop(signals) })
}

func forward(signals <-chan os.Signal, handle Handle, unregister func()) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case sig := <-signals:
				switch sig {
				case unix.SIGUSR1:
					handle.RequestStop(SourcePeer)
				case unix.SIGTERM, unix.SIGINT:
					handle.Terminate()
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unregister()
			close(done)
			wg.Wait()
		})
	}
}
