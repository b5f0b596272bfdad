// Package config resolves, parses, validates, and defaults whisper-dictate configuration.
package config

import "time"

// Output modes accepted by general.output_mode.
const (
	OutputClipboard = "clipboard"
	OutputType      = "type"
)

// Config is the fully materialized runtime configuration used by whisper-dictate.
type Config struct {
	General       GeneralConfig
	Model         ModelConfig
	Transcription TranscriptionConfig
	Audio         AudioConfig
	UI            UIConfig
	Indicator     IndicatorConfig
	Clipboard     CommandConfig
	TypeCmd       CommandConfig
	History       HistoryConfig
	Metrics       MetricsConfig
	Instance      InstanceConfig
}

// GeneralConfig controls delivery mode and transcription language.
type GeneralConfig struct {
	OutputMode string
	Language   string
}

// ModelConfig names the whisper model and the directory holding model files.
type ModelConfig struct {
	Name string
	Path string
}

// TranscriptionConfig controls how the whisper executable is invoked.
type TranscriptionConfig struct {
	WhisperCLI     string
	Threads        int
	TimeoutSeconds int
	// MaxDurationSeconds stops recording automatically; zero disables the cap.
	MaxDurationSeconds int
}

// Timeout returns the transcription wall-clock bound.
func (c TranscriptionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxDuration returns the recording cap, or zero when disabled.
func (c TranscriptionConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds) * time.Second
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// UIConfig controls the terminal level visualizer.
type UIConfig struct {
	Enable     bool
	Position   string
	EdgeMargin int
	Theme      string
}

// IndicatorConfig controls desktop notifications and audio cues.
type IndicatorConfig struct {
	Notify  bool
	Sound   bool
	AppName string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// HistoryConfig controls the session history store.
type HistoryConfig struct {
	Enable bool
	Path   string
}

// MetricsConfig controls the optional Prometheus textfile output.
type MetricsConfig struct {
	Textfile string
}

// InstanceConfig locates the single-instance marker file.
type InstanceConfig struct {
	MarkerPath string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
