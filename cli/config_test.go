package cli

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/sigil/cli/cmd"
)

type configFlags struct {
	LogLevel   string `default:"info"`
	WhileLimit int    `default:"10000"`
	LogPretty  bool
	Plugin     []string
	BaseDir    string
}

func parseWithConfig(t *testing.T, content string, args ...string) configFlags {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	var flags configFlags

	parser, err := kong.New(&flags,
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Configuration(loadYAML, path),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	_, err = parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	return flags
}

func TestLoadYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		want    configFlags
	}{
		{
			name:    "empty",
			content: "",
			want:    configFlags{LogLevel: "info", WhileLimit: 10000},
		},
		{
			name:    "hyphen",
			content: "log-level: debug\nwhile-limit: 25\n",
			want:    configFlags{LogLevel: "debug", WhileLimit: 25},
		},
		{
			name:    "underscore",
			content: "log_level: warn\nLOG_PRETTY: true\n",
			want:    configFlags{LogLevel: "warn", LogPretty: true, WhileLimit: 10000},
		},
		{
			name:    "nested",
			content: "log:\n  level: error\n  pretty: true\nbase:\n  dir: /srv\n",
			want: configFlags{
				LogLevel:   "error",
				LogPretty:  true,
				WhileLimit: 10000,
				BaseDir:    "/srv",
			},
		},
		{
			name:    "sequence",
			content: "plugin: [pathenv, yamlio]\n",
			want: configFlags{
				LogLevel:   "info",
				WhileLimit: 10000,
				Plugin:     []string{"pathenv", "yamlio"},
			},
		},
		{
			name:    "flag_overrides",
			content: "log-level: debug\nwhile-limit: 25\n",
			args:    []string{"--while-limit=7"},
			want:    configFlags{LogLevel: "debug", WhileLimit: 7},
		},
		{
			name:    "null_ignored",
			content: "log-level: ~\n",
			want:    configFlags{LogLevel: "info", WhileLimit: 10000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseWithConfig(t, tt.content, tt.args...)

			if got.LogLevel != tt.want.LogLevel ||
				got.LogPretty != tt.want.LogPretty ||
				got.WhileLimit != tt.want.WhileLimit ||
				got.BaseDir != tt.want.BaseDir ||
				!slices.Equal(got.Plugin, tt.want.Plugin) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	_, err := loadYAML(strings.NewReader("plugin: [pathenv\n"))
	if !errors.Is(err, cmd.ErrReadConfig) {
		t.Errorf("loadYAML() error = %v, want %v", err, cmd.ErrReadConfig)
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		value any
		want  string
		ok    bool
	}{
		{nil, "", false},
		{"text", "text", true},
		{true, "true", true},
		{1.5, "1.5", true},
		{uint64(42), "42", true},
		{[]any{"a", uint64(2), nil}, "a,2", true},
	}

	for _, tt := range tests {
		got, ok := scalar(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("scalar(%#v) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
