package config

// DefaultMarkerPath is the well-known single-instance marker location.
const DefaultMarkerPath = "/tmp/whisper-dictate.pid"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		General: GeneralConfig{
			OutputMode: OutputClipboard,
			Language:   "en",
		},
		Model: ModelConfig{
			Name: "small.en",
			Path: ModelsDir(),
		},
		Transcription: TranscriptionConfig{
			Threads:        4,
			TimeoutSeconds: 60,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		UI: UIConfig{
			Enable:     true,
			Position:   "bottom",
			EdgeMargin: 1,
			Theme:      "google",
		},
		Indicator: IndicatorConfig{
			Notify:  true,
			Sound:   true,
			AppName: "whisper-dictate",
		},
		History: HistoryConfig{
			Enable: true,
			Path:   HistoryPath(),
		},
		Instance: InstanceConfig{MarkerPath: DefaultMarkerPath},
	}
}
