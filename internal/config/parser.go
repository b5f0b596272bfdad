package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	General       *fileGeneral       `yaml:"general,omitempty"`
	Model         *fileModel         `yaml:"model,omitempty"`
	Transcription *fileTranscription `yaml:"transcription,omitempty"`
	Audio         *fileAudio         `yaml:"audio,omitempty"`
	UI            *fileUI            `yaml:"ui,omitempty"`
	Indicator     *fileIndicator     `yaml:"indicator,omitempty"`
	ClipboardCmd  *string            `yaml:"clipboard_cmd,omitempty"`
	TypeCmd       *string            `yaml:"type_cmd,omitempty"`
	History       *fileHistory       `yaml:"history,omitempty"`
	Metrics       *fileMetrics       `yaml:"metrics,omitempty"`
	Instance      *fileInstance      `yaml:"instance,omitempty"`
}

type fileGeneral struct {
	OutputMode *string `yaml:"output_mode,omitempty"`
	Language   *string `yaml:"language,omitempty"`
}

type fileModel struct {
	Name *string `yaml:"name,omitempty"`
	Path *string `yaml:"path,omitempty"`
}

type fileTranscription struct {
	WhisperCLI  *string `yaml:"whisper_cli,omitempty"`
	Threads     *int    `yaml:"threads,omitempty"`
	Timeout     *int    `yaml:"timeout,omitempty"`
	MaxDuration *int    `yaml:"max_duration,omitempty"`
}

type fileAudio struct {
	Input    *string `yaml:"input,omitempty"`
	Fallback *string `yaml:"fallback,omitempty"`
}

type fileUI struct {
	Enable     *bool   `yaml:"enable,omitempty"`
	Position   *string `yaml:"position,omitempty"`
	EdgeMargin *int    `yaml:"edge_margin,omitempty"`
	Theme      *string `yaml:"theme,omitempty"`
}

type fileIndicator struct {
	Notify  *bool   `yaml:"notify,omitempty"`
	Sound   *bool   `yaml:"sound,omitempty"`
	AppName *string `yaml:"app_name,omitempty"`
}

type fileHistory struct {
	Enable *bool   `yaml:"enable,omitempty"`
	Path   *string `yaml:"path,omitempty"`
}

type fileMetrics struct {
	Textfile *string `yaml:"textfile,omitempty"`
}

type fileInstance struct {
	MarkerPath *string `yaml:"marker_path,omitempty"`
}

// Parse decodes YAML configuration content on top of base and validates the result.
//
// Unknown keys are rejected; empty content yields base unchanged.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	decoder := yaml.NewDecoder(strings.NewReader(content))
	decoder.KnownFields(true)

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, nil, err
	}

	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return Config{}, nil, err
		}
		return Config{}, nil, errors.New("multiple YAML documents are not allowed")
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload fileConfig) applyTo(cfg *Config) error {
	if g := payload.General; g != nil {
		setString(&cfg.General.OutputMode, g.OutputMode)
		setString(&cfg.General.Language, g.Language)
	}
	if m := payload.Model; m != nil {
		setString(&cfg.Model.Name, m.Name)
		if m.Path != nil {
			cfg.Model.Path = ExpandUser(*m.Path)
		}
	}
	if tr := payload.Transcription; tr != nil {
		if tr.WhisperCLI != nil {
			cfg.Transcription.WhisperCLI = ExpandUser(*tr.WhisperCLI)
		}
		setInt(&cfg.Transcription.Threads, tr.Threads)
		setInt(&cfg.Transcription.TimeoutSeconds, tr.Timeout)
		setInt(&cfg.Transcription.MaxDurationSeconds, tr.MaxDuration)
	}
	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
	}
	if u := payload.UI; u != nil {
		setBool(&cfg.UI.Enable, u.Enable)
		setString(&cfg.UI.Position, u.Position)
		setInt(&cfg.UI.EdgeMargin, u.EdgeMargin)
		setString(&cfg.UI.Theme, u.Theme)
	}
	if ind := payload.Indicator; ind != nil {
		setBool(&cfg.Indicator.Notify, ind.Notify)
		setBool(&cfg.Indicator.Sound, ind.Sound)
		setString(&cfg.Indicator.AppName, ind.AppName)
	}
	if payload.ClipboardCmd != nil {
		cmd, err := commandConfig(*payload.ClipboardCmd)
		if err != nil {
			return fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = cmd
	}
	if payload.TypeCmd != nil {
		cmd, err := commandConfig(*payload.TypeCmd)
		if err != nil {
			return fmt.Errorf("invalid type_cmd: %w", err)
		}
		cfg.TypeCmd = cmd
	}
	if h := payload.History; h != nil {
		setBool(&cfg.History.Enable, h.Enable)
		if h.Path != nil {
			cfg.History.Path = ExpandUser(*h.Path)
		}
	}
	if m := payload.Metrics; m != nil && m.Textfile != nil {
		cfg.Metrics.Textfile = ExpandUser(*m.Textfile)
	}
	if in := payload.Instance; in != nil {
		setString(&cfg.Instance.MarkerPath, in.MarkerPath)
	}
	return nil
}

// Render marshals cfg as a complete YAML document.
func Render(cfg Config) ([]byte, error) {
	payload := fileConfig{
		General: &fileGeneral{
			OutputMode: &cfg.General.OutputMode,
			Language:   &cfg.General.Language,
		},
		Model: &fileModel{Name: &cfg.Model.Name, Path: &cfg.Model.Path},
		Transcription: &fileTranscription{
			WhisperCLI:  &cfg.Transcription.WhisperCLI,
			Threads:     &cfg.Transcription.Threads,
			Timeout:     &cfg.Transcription.TimeoutSeconds,
			MaxDuration: &cfg.Transcription.MaxDurationSeconds,
		},
		Audio: &fileAudio{Input: &cfg.Audio.Input, Fallback: &cfg.Audio.Fallback},
		UI: &fileUI{
			Enable:     &cfg.UI.Enable,
			Position:   &cfg.UI.Position,
			EdgeMargin: &cfg.UI.EdgeMargin,
			Theme:      &cfg.UI.Theme,
		},
		Indicator: &fileIndicator{
			Notify:  &cfg.Indicator.Notify,
			Sound:   &cfg.Indicator.Sound,
			AppName: &cfg.Indicator.AppName,
		},
		ClipboardCmd: &cfg.Clipboard.Raw,
		TypeCmd:      &cfg.TypeCmd.Raw,
		History:      &fileHistory{Enable: &cfg.History.Enable, Path: &cfg.History.Path},
		Metrics:      &fileMetrics{Textfile: &cfg.Metrics.Textfile},
		Instance:     &fileInstance{MarkerPath: &cfg.Instance.MarkerPath},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
