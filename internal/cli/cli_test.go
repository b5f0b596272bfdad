package cli

import (
	"testing"

	"github.com/rbright/whisper-dictate/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToRun(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.False(t, parsed.ShowHelp)
	require.Equal(t, CommandRun, parsed.Command)
	require.Equal(t, DefaultHistoryLimit, parsed.Limit)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/whisper-dictate.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/whisper-dictate.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseRunOverrides(t *testing.T) {
	parsed, err := Parse([]string{"--type", "-m", "base.en", "--language=de", "-p", "top", "--theme", "mono"})
	require.NoError(t, err)
	require.Equal(t, CommandRun, parsed.Command)
	require.Equal(t, config.Overrides{
		TypeOutput: true,
		Model:      "base.en",
		Language:   "de",
		Position:   "top",
		Theme:      "mono",
	}, parsed.Overrides)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   string
		wantCmd   Command
		wantHelp  bool
		wantPath  string
		wantModel string
		wantLimit int
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help command",
			args:     []string{"help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "version short flag",
			args:    []string{"-v"},
			wantCmd: CommandVersion,
		},
		{
			name:    "toggle aliases run",
			args:    []string{"toggle"},
			wantCmd: CommandRun,
		},
		{
			name:     "config after command",
			args:     []string{"status", "-c", "/tmp/cfg"},
			wantCmd:  CommandStatus,
			wantPath: "/tmp/cfg",
		},
		{
			name:     "inline config value",
			args:     []string{"--config=/tmp/cfg", "stop"},
			wantCmd:  CommandStop,
			wantPath: "/tmp/cfg",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing model value",
			args:    []string{"--model"},
			wantErr: "--model requires a value",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "two commands",
			args:    []string{"stop", "status"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "bad position",
			args:    []string{"--position", "left"},
			wantErr: "top or bottom",
		},
		{
			name:      "download model positional",
			args:      []string{"download-model", "small.en"},
			wantCmd:   CommandDownloadModel,
			wantModel: "small.en",
		},
		{
			name:      "legacy download flag",
			args:      []string{"--download-model", "tiny"},
			wantCmd:   CommandDownloadModel,
			wantModel: "tiny",
		},
		{
			name:    "download model without name",
			args:    []string{"download-model"},
			wantErr: "requires a model name",
		},
		{
			name:    "legacy list models",
			args:    []string{"--list-models"},
			wantCmd: CommandModels,
		},
		{
			name:    "legacy init config",
			args:    []string{"--init-config"},
			wantCmd: CommandInitConfig,
		},
		{
			name:    "legacy show config",
			args:    []string{"--show-config"},
			wantCmd: CommandShowConfig,
		},
		{
			name:    "legacy flag conflicts with command",
			args:    []string{"status", "--show-config"},
			wantErr: "unexpected arguments",
		},
		{
			name:      "history limit",
			args:      []string{"history", "--limit", "3"},
			wantCmd:   CommandHistory,
			wantLimit: 3,
		},
		{
			name:    "history limit must be positive",
			args:    []string{"history", "--limit", "0"},
			wantErr: "positive integer",
		},
		{
			name:    "history limit must be numeric",
			args:    []string{"history", "--limit=many"},
			wantErr: "positive integer",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			require.Equal(t, tc.wantModel, parsed.ModelName)
			wantLimit := tc.wantLimit
			if wantLimit == 0 {
				wantLimit = DefaultHistoryLimit
			}
			require.Equal(t, wantLimit, parsed.Limit)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("whisper-dictate")
	for _, want := range []string{"run", "toggle", "stop", "status", "download-model", "history", "doctor", "--config PATH", "--type"} {
		require.Contains(t, text, want)
	}
}
