package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/launcher"
	"github.com/1broseidon/stackwm/internal/metrics"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/runtimepath"
	"github.com/1broseidon/stackwm/internal/script"
	"github.com/1broseidon/stackwm/internal/wm"
)

func runWM(cmd *cobra.Command, args []string) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := res.Config
	if globalOpts.display != "" {
		cfg.Display = globalOpts.display
	}
	logger := newLogger(cfg.LogLevel)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}

	launch := launcher.NewExec(logger)
	if cfg.Display != "" {
		launch.Env = launcher.EnvWithDisplay(os.Environ(), cfg.Display)
	}

	met := metrics.New()
	m := wm.New(backend, cfg, wm.WithLogger(logger), wm.WithMetrics(met), wm.WithLauncher(launch))
	scriptPath, err := userScript(m, cfg, logger)
	if err != nil {
		backend.Disconnect()
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := m.Bootstrap(ctx); err != nil {
		backend.Disconnect()
		return err
	}
	logger.Info("stackwm started", "version", version, "config", res.Path, "script", scriptPath)

	configPath := globalOpts.configPath
	if configPath == "" {
		configPath, _ = config.DefaultConfigPath()
	}
	reload := func() {
		m.Post(func() { reloadConfig(ctx, m, configPath, logger) })
	}

	go handleSignals(m, reload, logger)

	if cfg.Watch {
		watcher, err := config.NewWatcher([]string{configPath, scriptPath}, func(path string) {
			logger.Info("config changed", "path", path)
			reload()
		}, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("config watcher unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := met.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	err = m.Run(ctx)
	m.Logout()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stackwm stopped")
	return nil
}

// userScript points the manager at the configured script, or the default
// one, and returns its path.
func userScript(m *wm.Manager, cfg *config.Config, logger *slog.Logger) (string, error) {
	path := cfg.Script
	if path == "" {
		var err error
		if path, err = runtimepath.ScriptPath(); err != nil {
			return "", fmt.Errorf("failed to locate user script: %w", err)
		}
	}
	m.SetConfigurer(script.New(m, path, cfg.ScriptTimeout, logger))
	return path, nil
}

// reloadConfig runs on the event loop. A config that fails to load leaves
// the running settings untouched.
func reloadConfig(ctx context.Context, m *wm.Manager, path string, logger *slog.Logger) {
	res, err := config.LoadFromPath(path)
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}
	m.SetConfig(res.Config)
	if _, err := userScript(m, res.Config, logger); err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}
	if err := m.Update(ctx); err != nil {
		logger.Error("refresh after reload failed", "error", err)
		return
	}
	logger.Info("config reloaded")
}

// handleSignals reloads on SIGHUP and logs out on SIGINT or SIGTERM.
func handleSignals(m *wm.Manager, reload func(), logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				reload()
			default:
				logger.Info("shutting down", "signal", sig.String())
				m.Post(m.Logout)
				return
			}
		case <-m.Done():
			return
		}
	}
}
