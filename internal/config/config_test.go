package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "spiral", cfg.Layout)
	assert.Equal(t, DefaultGap, cfg.Gap)
	assert.True(t, cfg.Watch)
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, res.Path)
	assert.Equal(t, DefaultConfig(), res.Config)
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRatio, res.Config.Ratio)
}

func TestLoadFromPath_ReadsSettings(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		`display: ":1"`,
		`gap: 4`,
		`ratio: 1.2`,
		`layout: grid`,
		`script_timeout: 250ms`,
		`watch: false`,
		`startup:`,
		`  - [feh, --bg-fill, /tmp/bg.png]`,
		`bindings:`,
		`  - {keys: Mod4-t, action: launch, args: [xterm]}`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, ":1", cfg.Display)
	assert.Equal(t, 4, cfg.Gap)
	assert.InDelta(t, 1.2, cfg.Ratio, 1e-9)
	assert.Equal(t, "grid", cfg.Layout)
	assert.Equal(t, 250*time.Millisecond, cfg.ScriptTimeout)
	assert.False(t, cfg.Watch)
	assert.Equal(t, [][]string{{"feh", "--bg-fill", "/tmp/bg.png"}}, cfg.Startup)
	assert.Equal(t, []Binding{{Keys: "Mod4-t", Action: "launch", Args: []string{"xterm"}}}, cfg.Bindings)
	assert.Equal(t, cfg.Bindings, cfg.EffectiveBindings())
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "hotkey: Mod4-g\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotkey")
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "gap: 2\nratio: 3.5\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ratio", verr.Path)
	assert.Equal(t, 2, verr.Source.Line)
	assert.Contains(t, err.Error(), ":2:")
}

func TestLoadFromPath_BindingPosition(t *testing.T) {
	path := writeConfig(t, "bindings:\n  - {keys: Mod4-a, action: launch}\n  - {keys: '', action: wm.refresh}\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "bindings.1.keys", verr.Path)
	assert.Equal(t, 3, verr.Source.Line)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("STACKWM_DISPLAY", ":7")
	t.Setenv("STACKWM_LOG_LEVEL", "debug")
	t.Setenv("STACKWM_METRICS_ADDR", "127.0.0.1:9478")
	t.Setenv("STACKWM_SCRIPT", "/tmp/init.js")

	res, err := LoadFromPath(writeConfig(t, "display: \":1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7", res.Config.Display)
	assert.Equal(t, "debug", res.Config.LogLevel)
	assert.Equal(t, "127.0.0.1:9478", res.Config.MetricsAddr)
	assert.Equal(t, "/tmp/init.js", res.Config.Script)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative gap", func(c *Config) { c.Gap = -1 }, "gap"},
		{"ratio too small", func(c *Config) { c.Ratio = 0.05 }, "ratio"},
		{"unknown layout", func(c *Config) { c.Layout = "tabbed" }, "layout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero timeout", func(c *Config) { c.ScriptTimeout = 0 }, "script_timeout"},
		{"empty startup", func(c *Config) { c.Startup = [][]string{{}} }, "startup.0"},
		{"missing action", func(c *Config) { c.Bindings = []Binding{{Keys: "Mod4-a"}} }, "bindings.0.action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}

func TestDefaultBindings(t *testing.T) {
	bindings := DefaultBindings()

	seen := map[string]bool{}
	for _, b := range bindings {
		assert.False(t, seen[b.Keys], "duplicate chord %s", b.Keys)
		seen[b.Keys] = true
	}
	assert.True(t, seen["Mod4-t"])
	assert.True(t, seen["Mod4-Mod1-9"])

	cfg := DefaultConfig()
	assert.Equal(t, bindings, cfg.EffectiveBindings())
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, MinRatio, ClampRatio(-3))
	assert.Equal(t, MaxRatio, ClampRatio(2.5))
	assert.Equal(t, 1.3, ClampRatio(1.3))
}
