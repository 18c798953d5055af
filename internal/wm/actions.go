package wm

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/keymap"
)

var (
	// ErrUnknownAction is returned for names missing from the registry.
	ErrUnknownAction = errors.New("unknown action")
	// ErrActionArgs is returned when arguments do not fit the action.
	ErrActionArgs = errors.New("bad action arguments")

	errNoWindow          = errors.New("no window on the focused workspace")
	errWorkspaceNotEmpty = errors.New("workspace is not empty")
	errLastWorkspace     = errors.New("cannot remove the last workspace")
)

type argKind int

const (
	noArgs argKind = iota
	offsetArg
	commandArgs
)

var actionKinds = map[string]argKind{
	"launch":               commandArgs,
	"window.close":         noArgs,
	"window.swap":          offsetArg,
	"window.roll_left":     noArgs,
	"window.roll_right":    noArgs,
	"window.move":          offsetArg,
	"workspace.push":       noArgs,
	"workspace.pop":        noArgs,
	"workspace.swap":       offsetArg,
	"workspace.roll_left":  noArgs,
	"workspace.roll_right": noArgs,
	"workspace.fullscreen": noArgs,
	"workspace.shrink":     noArgs,
	"workspace.grow":       noArgs,
	"monitor.swap":         offsetArg,
	"monitor.roll_left":    noArgs,
	"monitor.roll_right":   noArgs,
	"wm.refresh":           noArgs,
	"wm.logout":            noArgs,
}

type actionArgs struct {
	n    int
	argv []string
}

type actionFunc func(actionArgs) error

const ratioStep = 0.1

// ActionNames lists every registered action, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(actionKinds))
	for name := range actionKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateAction checks that name exists and args fit it.
func ValidateAction(name string, args ...string) error {
	_, err := parseArgs(name, args)
	return err
}

func parseArgs(name string, args []string) (actionArgs, error) {
	kind, ok := actionKinds[name]
	if !ok {
		return actionArgs{}, fmt.Errorf("%w %q", ErrUnknownAction, name)
	}
	switch kind {
	case offsetArg:
		if len(args) != 1 {
			return actionArgs{}, fmt.Errorf("%w: %s takes one offset, got %d arguments", ErrActionArgs, name, len(args))
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return actionArgs{}, fmt.Errorf("%w: %s offset %q is not an integer", ErrActionArgs, name, args[0])
		}
		return actionArgs{n: n}, nil
	case commandArgs:
		if len(args) == 0 || args[0] == "" {
			return actionArgs{}, fmt.Errorf("%w: %s needs a program", ErrActionArgs, name)
		}
		return actionArgs{argv: args}, nil
	default:
		if len(args) != 0 {
			return actionArgs{}, fmt.Errorf("%w: %s takes no arguments", ErrActionArgs, name)
		}
		return actionArgs{}, nil
	}
}

// Action resolves a registry entry into a keymap action. Argument errors
// are reported now; runtime failures are logged when the action runs.
func (m *Manager) Action(name string, args ...string) (keymap.Action, error) {
	a, err := parseArgs(name, args)
	if err != nil {
		return nil, err
	}
	fn := m.actions[name]
	return func() {
		if err := fn(a); err != nil {
			m.logger.Warn("action failed", "action", name, "args", args, "error", err)
			m.metrics.ObserveAction(name, err)
			return
		}
		m.metrics.ObserveAction(name, nil)
	}, nil
}

// Do runs an action immediately and returns its error.
func (m *Manager) Do(name string, args ...string) error {
	a, err := parseArgs(name, args)
	if err != nil {
		return err
	}
	err = m.actions[name](a)
	m.metrics.ObserveAction(name, err)
	return err
}

func (m *Manager) registry() map[string]actionFunc {
	redraw := func(err error) error {
		if err != nil {
			return err
		}
		m.draw()
		return nil
	}

	return map[string]actionFunc{
		"launch": func(a actionArgs) error {
			return m.Launch(a.argv[0], a.argv[1:]...)
		},

		"window.close": func(actionArgs) error {
			w, err := m.focused().Windows.Peek(0)
			if err != nil {
				return errNoWindow
			}
			return m.backend.Close(w.ID)
		},
		"window.swap": func(a actionArgs) error {
			return redraw(m.focused().Windows.Swap(a.n))
		},
		"window.roll_left": func(actionArgs) error {
			m.focused().Windows.RollLeft()
			return redraw(nil)
		},
		"window.roll_right": func(actionArgs) error {
			m.focused().Windows.RollRight()
			return redraw(nil)
		},
		"window.move": func(a actionArgs) error {
			return redraw(m.moveWindow(a.n))
		},

		"workspace.push": func(actionArgs) error {
			m.workspaces.Push(m.newWorkspace())
			return redraw(nil)
		},
		"workspace.pop": func(actionArgs) error {
			return redraw(m.popWorkspace())
		},
		"workspace.swap": func(a actionArgs) error {
			return redraw(m.workspaces.Swap(a.n))
		},
		"workspace.roll_left": func(actionArgs) error {
			m.workspaces.RollLeft()
			return redraw(nil)
		},
		"workspace.roll_right": func(actionArgs) error {
			m.workspaces.RollRight()
			return redraw(nil)
		},
		"workspace.fullscreen": func(actionArgs) error {
			ws := m.focused()
			ws.Fullscreen = !ws.Fullscreen
			return redraw(nil)
		},
		"workspace.shrink": func(actionArgs) error {
			ws := m.focused()
			ws.Ratio = config.ClampRatio(ws.Ratio - ratioStep)
			return redraw(nil)
		},
		"workspace.grow": func(actionArgs) error {
			ws := m.focused()
			ws.Ratio = config.ClampRatio(ws.Ratio + ratioStep)
			return redraw(nil)
		},

		"monitor.swap": func(a actionArgs) error {
			return redraw(m.monitors.Swap(a.n))
		},
		"monitor.roll_left": func(actionArgs) error {
			m.monitors.RollLeft()
			return redraw(nil)
		},
		"monitor.roll_right": func(actionArgs) error {
			m.monitors.RollRight()
			return redraw(nil)
		},

		"wm.refresh": func(actionArgs) error {
			return m.Update(m.ctx)
		},
		"wm.logout": func(actionArgs) error {
			m.Logout()
			return nil
		},
	}
}

// moveWindow sends the TOS window of the focused workspace to the TOS of
// the workspace at offset n. Offset 0 pushes a fresh workspace first, so
// the window ends up alone and focused.
func (m *Manager) moveWindow(n int) error {
	if m.focused().Windows.Len() == 0 {
		return errNoWindow
	}

	var from, to *Workspace
	if n == 0 {
		m.workspaces.Push(m.newWorkspace())
		from, _ = m.workspaces.Peek(1)
		to, _ = m.workspaces.Peek(0)
	} else {
		var err error
		if to, err = m.workspaces.Peek(n); err != nil {
			return err
		}
		from = m.focused()
	}

	w, err := from.Windows.Pop()
	if err != nil {
		return err
	}
	to.Windows.Push(w)
	return nil
}

// popWorkspace removes the focused workspace when it is empty and another
// one remains.
func (m *Manager) popWorkspace() error {
	if m.focused().Windows.Len() > 0 {
		return errWorkspaceNotEmpty
	}
	if m.workspaces.Len() < 2 {
		return errLastWorkspace
	}
	_, err := m.workspaces.Pop()
	return err
}
