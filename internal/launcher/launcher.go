// Package launcher starts programs on behalf of the window manager.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// ErrEmptyCommand is returned when no program name is given.
var ErrEmptyCommand = errors.New("empty command")

// Launcher starts a program without waiting for it.
type Launcher interface {
	Launch(name string, args ...string) error
}

// Exec launches programs as children in their own session, so they survive
// the window manager and do not share its controlling terminal.
type Exec struct {
	logger *slog.Logger
	// Env, when set, replaces the inherited environment.
	Env []string
}

var _ Launcher = (*Exec)(nil)

// NewExec returns a launcher that logs through logger.
func NewExec(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{logger: logger.With("component", "launcher")}
}

// Launch starts name with args. A start failure is returned; the exit
// status is only logged.
func (e *Exec) Launch(name string, args ...string) error {
	if name == "" {
		return ErrEmptyCommand
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if e.Env != nil {
		cmd.Env = e.Env
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %q: %w", name, err)
	}
	e.logger.Debug("launched", "cmd", name, "args", args, "pid", cmd.Process.Pid)

	// Reap the child so it does not linger as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			e.logger.Warn("launched program failed", "cmd", name, "error", err)
		}
	}()
	return nil
}

// EnvWithDisplay returns a copy of environ with DISPLAY set to display, so
// programs open on the display being managed.
func EnvWithDisplay(environ []string, display string) []string {
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "DISPLAY=") {
			env = append(env, kv)
		}
	}
	return append(env, "DISPLAY="+display)
}
