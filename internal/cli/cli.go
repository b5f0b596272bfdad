// Package cli parses the whisper-dictate command line.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rbright/whisper-dictate/internal/config"
)

type Command string

const (
	CommandRun           Command = "run"
	CommandToggle        Command = "toggle"
	CommandStop          Command = "stop"
	CommandStatus        Command = "status"
	CommandDevices       Command = "devices"
	CommandModels        Command = "models"
	CommandDownloadModel Command = "download-model"
	CommandInitConfig    Command = "init-config"
	CommandShowConfig    Command = "show-config"
	CommandHistory       Command = "history"
	CommandDoctor        Command = "doctor"
	CommandVersion       Command = "version"
	CommandHelp          Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:           {},
	CommandToggle:        {},
	CommandStop:          {},
	CommandStatus:        {},
	CommandDevices:       {},
	CommandModels:        {},
	CommandDownloadModel: {},
	CommandInitConfig:    {},
	CommandShowConfig:    {},
	CommandHistory:       {},
	CommandDoctor:        {},
	CommandVersion:       {},
	CommandHelp:          {},
}

// legacyCommands maps flag spellings kept for older scripts onto commands.
var legacyCommands = map[string]Command{
	"--list-models":    CommandModels,
	"--download-model": CommandDownloadModel,
	"--init-config":    CommandInitConfig,
	"--show-config":    CommandShowConfig,
}

// DefaultHistoryLimit is used by `history` when --limit is absent.
const DefaultHistoryLimit = 10

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Overrides  config.Overrides
	// ModelName is the download-model argument.
	ModelName string
	Limit     int
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun, Limit: DefaultHistoryLimit}
	commandSet := false

	setCommand := func(cmd Command) error {
		if commandSet && parsed.Command != cmd {
			return fmt.Errorf("unexpected arguments after command %q", parsed.Command)
		}
		parsed.Command = cmd
		commandSet = true
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline, hasInline := strings.Cut(arg, "=")
		if !strings.HasPrefix(arg, "--") {
			name, inline, hasInline = arg, "", false
		}

		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			i++
			if i >= len(args) || args[i] == "" {
				return "", fmt.Errorf("%s requires a value", name)
			}
			return args[i], nil
		}

		switch name {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
			commandSet = true
		case "-v", "--version":
			if err := setCommand(CommandVersion); err != nil {
				return Parsed{}, err
			}
		case "-c", "--config":
			v, err := value()
			if err != nil {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = v
		case "--type":
			parsed.Overrides.TypeOutput = true
		case "-m", "--model":
			v, err := value()
			if err != nil {
				return Parsed{}, err
			}
			parsed.Overrides.Model = v
		case "-l", "--language":
			v, err := value()
			if err != nil {
				return Parsed{}, err
			}
			parsed.Overrides.Language = v
		case "-p", "--position":
			v, err := value()
			if err != nil {
				return Parsed{}, err
			}
			if v != "top" && v != "bottom" {
				return Parsed{}, fmt.Errorf("--position must be top or bottom, got %q", v)
			}
			parsed.Overrides.Position = v
		case "--theme":
			v, err := value()
			if err != nil {
				return Parsed{}, err
			}
			parsed.Overrides.Theme = v
		case "--limit":
			v, err := value()
			if err != nil {
				return Parsed{}, err
			}
			limit, convErr := strconv.Atoi(v)
			if convErr != nil || limit <= 0 {
				return Parsed{}, fmt.Errorf("--limit must be a positive integer, got %q", v)
			}
			parsed.Limit = limit
		case "--list-models", "--download-model", "--init-config", "--show-config":
			if err := setCommand(legacyCommands[name]); err != nil {
				return Parsed{}, err
			}
			if name == "--download-model" {
				v, err := value()
				if err != nil {
					return Parsed{}, err
				}
				parsed.ModelName = v
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if commandSet {
				if parsed.Command == CommandDownloadModel && parsed.ModelName == "" {
					parsed.ModelName = arg
					continue
				}
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}
			if cmd == CommandToggle {
				cmd = CommandRun
			}
			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			commandSet = true
		}
	}

	if parsed.Command == CommandDownloadModel && parsed.ModelName == "" && !parsed.ShowHelp {
		return Parsed{}, errors.New("download-model requires a model name")
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] [command]

Commands:
  run             Start dictation, or stop the running session (default; alias: toggle)
  stop            Stop the running session without starting a new one
  status          Print whether a session is recording
  devices         List available input devices
  models          List downloaded models and mark the configured one
  download-model  Download a ggml model by name (for example small.en)
  init-config     Write the default config file
  show-config     Print the resolved configuration
  history         List recent sessions
  doctor          Run configuration and environment checks
  version         Print version information
  help            Show this help

Flags:
  -c, --config PATH       Config file path (default: $XDG_CONFIG_HOME/whisper-dictate/config.yaml)
      --type              Also type the transcript into the focused window
  -m, --model NAME        Model name override
  -l, --language CODE     Language override
  -p, --position POS      Visualizer position: top or bottom
      --theme NAME        Visualizer theme: google, blue, purple, mono
      --limit N           Number of history entries (default: %[2]d)
  -h, --help              Show help
  -v, --version           Show version
`, binaryName, DefaultHistoryLimit)
}
