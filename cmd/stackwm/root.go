package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/stackwm/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var globalOpts struct {
	verbose    bool
	configPath string
	display    string
}

var rootCmd = &cobra.Command{
	Use:   "stackwm",
	Short: "Stack-oriented tiling window manager for X11",
	Long: `stackwm manages X11 windows as stacks.

Monitors, workspaces and windows each form an ordered stack. The top of
each stack is what is current: the focused window, the workspace on the
primary monitor. Key chords roll and swap stack entries.

Running stackwm without a subcommand takes over the display.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runWM,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stackwm:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/stackwm/config.yaml)")
	rootCmd.Flags().StringVar(&globalOpts.display, "display", "",
		"X display to manage (default: $DISPLAY)")
}

// loadConfig reads the file named by --config, or the default location.
func loadConfig() (*config.LoadResult, error) {
	path := globalOpts.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

// newLogger builds the process logger. Text goes to a terminal; otherwise
// JSON, so session logs stay machine readable.
func newLogger(levelName string) *slog.Logger {
	level, err := config.ParseLevel(levelName)
	if err != nil {
		level = slog.LevelInfo
	}
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
