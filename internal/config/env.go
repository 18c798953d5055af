package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are read from STACKWM_* variables. Empty values leave the
// file setting alone. Fields carry no envconfig tag, so unprefixed names
// such as $DISPLAY are never read.
type envOverrides struct {
	Display     string
	LogLevel    string `split_words:"true"`
	MetricsAddr string `split_words:"true"`
	Script      string
}

const envPrefix = "STACKWM"

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if env.Display != "" {
		cfg.Display = env.Display
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.MetricsAddr != "" {
		cfg.MetricsAddr = env.MetricsAddr
	}
	if env.Script != "" {
		cfg.Script = env.Script
	}
	return nil
}
