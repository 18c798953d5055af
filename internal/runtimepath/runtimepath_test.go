package runtimepath

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDir_UsesXDGConfigHomeWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(td, "stackwm"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigDir_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(home, ".config", "stackwm"); got != want {
		t.Fatalf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigPathAndScriptPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	cfg, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error: %v", err)
	}
	if !strings.HasSuffix(cfg, "/stackwm/config.yaml") {
		t.Fatalf("ConfigPath() = %q, missing suffix", cfg)
	}

	script, err := ScriptPath()
	if err != nil {
		t.Fatalf("ScriptPath() error: %v", err)
	}
	if !strings.HasSuffix(script, "/stackwm/init.js") {
		t.Fatalf("ScriptPath() = %q, missing suffix", script)
	}
}
