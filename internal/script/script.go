// Package script runs the user configuration script in a sandboxed
// JavaScript runtime.
package script

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/1broseidon/stackwm/internal/keymap"
)

// ErrTimeout is returned when the script or one of its callbacks runs past
// the configured timeout.
var ErrTimeout = errors.New("script timeout exceeded")

const maxCallStackSize = 1024

// Host is the window manager surface a script may drive.
type Host interface {
	Action(name string, args ...string) (keymap.Action, error)
	ParseChord(s string) (keymap.Chord, error)
	InstallKeymap(b keymap.Bindings) error
	Launch(name string, args ...string) error
	SetGap(gap int) error
	SetRatio(ratio float64) error
	SetLayout(name string) error
}

// Loader evaluates the script at path against a Host.
type Loader struct {
	host    Host
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a loader. A non-positive timeout disables the limit.
func New(host Host, path string, timeout time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		host:    host,
		path:    path,
		timeout: timeout,
		logger:  logger.With("component", "script", "path", path),
	}
}

// Path returns the script location.
func (l *Loader) Path() string { return l.path }

// Configure runs the script from the top in a fresh runtime. A missing
// script is not an error. Effects applied before a failure are kept.
func (l *Loader) Configure(ctx context.Context) error {
	src, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no user script")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	r := newRuntime(l.host, l.timeout, l.logger)
	if err := r.guard(ctx, func() error {
		_, err := r.vm.RunScript(l.path, string(src))
		return err
	}); err != nil {
		return fmt.Errorf("run %s: %w", l.path, err)
	}
	l.logger.Debug("user script done")
	return nil
}

type runtime struct {
	vm      *goja.Runtime
	host    Host
	timeout time.Duration
	logger  *slog.Logger
}

func newRuntime(host Host, timeout time.Duration, logger *slog.Logger) *runtime {
	r := &runtime{
		vm:      goja.New(),
		host:    host,
		timeout: timeout,
		logger:  logger,
	}
	r.vm.SetMaxCallStackSize(maxCallStackSize)
	r.setupGlobals()
	return r
}

func (r *runtime) setupGlobals() {
	for _, name := range []string{"require", "process", "module", "exports"} {
		r.vm.Set(name, goja.Undefined())
	}

	console := r.vm.NewObject()
	console.Set("log", r.logFunc(slog.LevelInfo))
	console.Set("info", r.logFunc(slog.LevelInfo))
	console.Set("debug", r.logFunc(slog.LevelDebug))
	console.Set("warn", r.logFunc(slog.LevelWarn))
	console.Set("error", r.logFunc(slog.LevelError))
	r.vm.Set("console", console)

	wm := r.vm.NewObject()
	wm.Set("action", r.action)
	wm.Set("launch", r.launch)
	wm.Set("keymap", r.installKeymap)
	wm.Set("exec", r.exec)
	wm.Set("set", r.set)
	wm.Set("log", r.logFunc(slog.LevelInfo))
	r.vm.Set("wm", wm)
}

// guard runs fn with the timeout and ctx able to interrupt the VM.
func (r *runtime) guard(ctx context.Context, fn func() error) error {
	defer r.vm.ClearInterrupt()
	if r.timeout > 0 {
		timer := time.AfterFunc(r.timeout, func() { r.vm.Interrupt(ErrTimeout) })
		defer timer.Stop()
	}
	stop := context.AfterFunc(ctx, func() { r.vm.Interrupt(ctx.Err()) })
	defer stop()

	err := fn()
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
	}
	return err
}

// callback adapts a JS function into a keymap action. Exceptions are
// logged; the action never panics into the event loop.
func (r *runtime) callback(chord string, fn goja.Callable) keymap.Action {
	return func() {
		err := r.guard(context.Background(), func() error {
			_, err := fn(goja.Undefined())
			return err
		})
		if err != nil {
			r.logger.Warn("key callback failed", "chord", chord, "error", err)
		}
	}
}

func (r *runtime) throw(err error) {
	panic(r.vm.NewGoError(err))
}

func (r *runtime) stringArgs(args []goja.Value) []string {
	out := make([]string, len(args))
	for i, v := range args {
		out[i] = v.String()
	}
	return out
}

// wm.action(name, ...args) returns a function that runs the action.
func (r *runtime) action(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		panic(r.vm.NewTypeError("wm.action needs an action name"))
	}
	args := r.stringArgs(call.Arguments)
	return r.wrap(args[0], args[1:])
}

// wm.launch(cmd, ...args) is wm.action("launch", cmd, ...args).
func (r *runtime) launch(call goja.FunctionCall) goja.Value {
	return r.wrap("launch", r.stringArgs(call.Arguments))
}

func (r *runtime) wrap(name string, args []string) goja.Value {
	act, err := r.host.Action(name, args...)
	if err != nil {
		r.throw(err)
	}
	return r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		act()
		return goja.Undefined()
	})
}

// wm.keymap({chord: fn}) replaces the active keymap. Chords that do not
// resolve are logged and left out.
func (r *runtime) installKeymap(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		panic(r.vm.NewTypeError("wm.keymap needs an object of chord: function"))
	}
	obj := arg.ToObject(r.vm)

	bindings := make(keymap.Bindings)
	for _, key := range obj.Keys() {
		fn, ok := goja.AssertFunction(obj.Get(key))
		if !ok {
			panic(r.vm.NewTypeError(fmt.Sprintf("wm.keymap: %q is not bound to a function", key)))
		}
		chord, err := r.host.ParseChord(key)
		if err != nil {
			r.logger.Warn("skipping chord", "chord", key, "error", err)
			continue
		}
		bindings[chord] = r.callback(key, fn)
	}

	if err := r.host.InstallKeymap(bindings); err != nil {
		r.logger.Warn("keymap installed with errors", "error", err)
	}
	return goja.Undefined()
}

// wm.exec(cmd, ...args) launches now and reports success.
func (r *runtime) exec(call goja.FunctionCall) goja.Value {
	argv := r.stringArgs(call.Arguments)
	if len(argv) == 0 || argv[0] == "" {
		panic(r.vm.NewTypeError("wm.exec needs a program"))
	}
	if err := r.host.Launch(argv[0], argv[1:]...); err != nil {
		r.logger.Warn("exec failed", "cmd", argv, "error", err)
		return r.vm.ToValue(false)
	}
	return r.vm.ToValue(true)
}

// wm.set({gap, ratio, layout}) adjusts drawing settings.
func (r *runtime) set(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		panic(r.vm.NewTypeError("wm.set needs an object"))
	}
	obj := arg.ToObject(r.vm)

	for _, key := range obj.Keys() {
		v := obj.Get(key)
		var err error
		switch key {
		case "gap":
			err = r.host.SetGap(int(v.ToInteger()))
		case "ratio":
			err = r.host.SetRatio(v.ToFloat())
		case "layout":
			err = r.host.SetLayout(v.String())
		default:
			panic(r.vm.NewTypeError(fmt.Sprintf("wm.set: unknown setting %q", key)))
		}
		if err != nil {
			r.throw(fmt.Errorf("%s: %w", key, err))
		}
	}
	return goja.Undefined()
}

func (r *runtime) logFunc(level slog.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		r.logger.Log(context.Background(), level, strings.Join(r.stringArgs(call.Arguments), " "))
		return goja.Undefined()
	}
}

// Check compiles the script at path without running it. A missing script
// is not an error.
func Check(path string) error {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if _, err := goja.Compile(path, string(src), false); err != nil {
		return fmt.Errorf("compile %s: %w", path, err)
	}
	return nil
}
