// Package metrics collects per-process session counters and writes them as a Prometheus textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "whisper_dictate"

// Recorder owns a private registry so textfile output never includes Go runtime collectors.
type Recorder struct {
	registry *prometheus.Registry

	sessions          *prometheus.CounterVec
	transcriptions    *prometheus.CounterVec
	transcribeSeconds prometheus.Histogram
	capturedBytes     prometheus.Counter
	stopRequests      *prometheus.CounterVec
	lastSession       prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Dictation sessions by outcome.",
		}, []string{"outcome"}),
		transcriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Whisper invocations by result.",
		}, []string{"result"}),
		transcribeSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall-clock duration of whisper invocations.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		capturedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_bytes_total",
			Help:      "PCM bytes captured from the microphone.",
		}),
		stopRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stop_requests_total",
			Help:      "Accepted stop requests by source.",
		}, []string{"source"}),
		lastSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_session_timestamp_seconds",
			Help:      "Unix time the last session finished.",
		}),
	}
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) StopRequested(source string) {
	r.stopRequests.WithLabelValues(source).Inc()
}

func (r *Recorder) Captured(bytes int64) {
	if bytes > 0 {
		r.capturedBytes.Add(float64(bytes))
	}
}

func (r *Recorder) TranscriptionFinished(result string, duration time.Duration) {
	r.transcriptions.WithLabelValues(result).Inc()
	r.transcribeSeconds.Observe(duration.Seconds())
}

func (r *Recorder) SessionFinished(outcome string) {
	r.sessions.WithLabelValues(outcome).Inc()
	r.lastSession.SetToCurrentTime()
}

// WriteTextfile atomically writes the registry for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
