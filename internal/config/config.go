package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/stackwm/internal/tiling"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultGap           = 8
	DefaultRatio         = 1.0
	MinRatio             = 0.1
	MaxRatio             = 1.9
	DefaultScriptTimeout = 5 * time.Second
)

// Binding ties a chord in "Mod4-Shift-j" notation to a named action.
type Binding struct {
	Keys   string   `yaml:"keys"`
	Action string   `yaml:"action"`
	Args   []string `yaml:"args,omitempty"`
}

// Config holds the window manager settings.
type Config struct {
	// Display is the X display to manage; empty uses $DISPLAY.
	Display string `yaml:"display"`
	// Gap is the spacing in pixels between tiles and around the edge.
	Gap int `yaml:"gap"`
	// Ratio is the initial split ratio of new workspaces.
	Ratio    float64 `yaml:"ratio"`
	Layout   string  `yaml:"layout"`
	LogLevel string  `yaml:"log_level"`
	// Script overrides the user script location.
	Script        string        `yaml:"script"`
	ScriptTimeout time.Duration `yaml:"script_timeout"`
	// Watch reloads the configuration when the file or script changes.
	Watch       bool       `yaml:"watch"`
	MetricsAddr string     `yaml:"metrics_addr"`
	Startup     [][]string `yaml:"startup"`
	Bindings    []Binding  `yaml:"bindings"`
}

// ValidationError locates a bad setting, with its file position when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Gap:           DefaultGap,
		Ratio:         DefaultRatio,
		Layout:        string(tiling.LayoutSpiral),
		LogLevel:      "info",
		ScriptTimeout: DefaultScriptTimeout,
		Watch:         true,
	}
}

// EffectiveBindings returns the configured bindings, or the builtin set when
// none are configured.
func (c *Config) EffectiveBindings() []Binding {
	if len(c.Bindings) > 0 {
		return c.Bindings
	}
	return DefaultBindings()
}

// Validate checks every setting and reports the first problem.
func (c *Config) Validate() error {
	if c.Gap < 0 {
		return &ValidationError{Path: "gap", Err: fmt.Errorf("gap must be >= 0")}
	}
	if c.Ratio < MinRatio || c.Ratio > MaxRatio {
		return &ValidationError{Path: "ratio", Err: fmt.Errorf("ratio must be between %.1f and %.1f", MinRatio, MaxRatio)}
	}
	if _, err := tiling.ParseLayout(c.Layout); err != nil {
		return &ValidationError{Path: "layout", Err: fmt.Errorf("layout must be one of: spiral, grid")}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.ScriptTimeout <= 0 {
		return &ValidationError{Path: "script_timeout", Err: fmt.Errorf("script_timeout must be > 0")}
	}
	for i, argv := range c.Startup {
		if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			return &ValidationError{Path: fmt.Sprintf("startup.%d", i), Err: fmt.Errorf("startup command must not be empty")}
		}
	}
	for i, b := range c.Bindings {
		if strings.TrimSpace(b.Keys) == "" {
			return &ValidationError{Path: fmt.Sprintf("bindings.%d.keys", i), Err: fmt.Errorf("keys are required")}
		}
		if strings.TrimSpace(b.Action) == "" {
			return &ValidationError{Path: fmt.Sprintf("bindings.%d.action", i), Err: fmt.Errorf("action is required")}
		}
	}
	return nil
}

// ClampRatio bounds a workspace ratio to the accepted range.
func ClampRatio(r float64) float64 {
	return min(max(r, MinRatio), MaxRatio)
}
