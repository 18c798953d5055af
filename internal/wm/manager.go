// Package wm is the window manager core: the monitor, workspace and window
// stacks, the keymap and the event loop that keeps them in step with the
// display server.
package wm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/keymap"
	"github.com/1broseidon/stackwm/internal/launcher"
	"github.com/1broseidon/stackwm/internal/metrics"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/stack"
	"github.com/1broseidon/stackwm/internal/tiling"
)

// Name is announced to the display server when becoming the window manager.
const Name = "stackwm"

// Configurer applies user configuration, typically by running a script
// against the manager. It runs on the event loop.
type Configurer interface {
	Configure(ctx context.Context) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithLauncher replaces the process launcher.
func WithLauncher(l launcher.Launcher) Option {
	return func(m *Manager) { m.launcher = l }
}

// WithMetrics records loop activity into met.
func WithMetrics(met *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = met }
}

// WithConfigurer runs c on every Update after the declarative bindings are
// installed.
func WithConfigurer(c Configurer) Option {
	return func(m *Manager) { m.configurer = c }
}

// Manager owns every stack and the keymap. All state is touched only from
// the goroutine running Bootstrap and Run.
type Manager struct {
	backend    platform.Backend
	cfg        *config.Config
	logger     *slog.Logger
	launcher   launcher.Launcher
	metrics    *metrics.Metrics
	configurer Configurer

	monitors   *stack.Stack[Monitor]
	workspaces *stack.Stack[*Workspace]
	keymap     *keymap.Keymap
	actions    map[string]actionFunc

	gap    int
	ratio  float64
	layout tiling.Layout

	workspaceSeq int

	ctx       context.Context
	cancel    context.CancelFunc
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a manager around backend. cfg may be nil for defaults.
func New(backend platform.Backend, cfg *config.Config, opts ...Option) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		backend:    backend,
		cfg:        cfg,
		logger:     slog.Default(),
		monitors:   stack.New[Monitor](),
		workspaces: stack.New[*Workspace](),
		ctx:        ctx,
		cancel:     cancel,
		tasks:      make(chan func(), 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "wm")
	if m.launcher == nil {
		m.launcher = launcher.NewExec(m.logger)
	}
	m.keymap = keymap.New(backend, m.logger)
	m.actions = m.registry()
	m.applyConfig(cfg)
	return m
}

// SetConfigurer replaces the configurer used by Update.
func (m *Manager) SetConfigurer(c Configurer) {
	m.configurer = c
}

// SetConfig swaps in a new configuration. It takes effect on the next
// Update.
func (m *Manager) SetConfig(cfg *config.Config) {
	m.cfg = cfg
	m.applyConfig(cfg)
}

func (m *Manager) applyConfig(cfg *config.Config) {
	m.gap = cfg.Gap
	m.setDefaultRatio(config.ClampRatio(cfg.Ratio))
	layout, err := tiling.ParseLayout(cfg.Layout)
	if err != nil {
		m.logger.Warn("ignoring layout", "error", err)
		layout = tiling.LayoutSpiral
	}
	m.layout = layout
}

// Bootstrap claims the display, builds the initial state and launches the
// startup programs. Failing to become the window manager is fatal.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if err := m.backend.BecomeWM(Name); err != nil {
		return fmt.Errorf("become window manager: %w", err)
	}
	if err := m.Update(ctx); err != nil {
		return err
	}
	for _, argv := range m.cfg.Startup {
		if len(argv) == 0 {
			continue
		}
		if err := m.Launch(argv[0], argv[1:]...); err != nil {
			m.logger.Warn("startup program failed", "cmd", argv, "error", err)
		}
	}
	return nil
}

// Update rebuilds the monitor stack from the current displays, makes sure
// a workspace exists, reapplies the configuration and redraws. Only a
// display enumeration failure is returned; configuration problems are
// logged.
func (m *Manager) Update(ctx context.Context) error {
	displays, err := m.backend.Displays()
	if err != nil {
		return fmt.Errorf("enumerate displays: %w", err)
	}

	monitors := stack.New[Monitor]()
	for _, d := range displays {
		monitors.Push(monitorFromDisplay(d))
	}
	m.monitors = monitors

	if m.workspaces.Len() == 0 {
		m.workspaces.Push(m.newWorkspace())
	}

	m.configure(ctx)
	m.draw()

	m.logger.Info("updated", "monitors", m.monitors.Len(), "workspaces", m.workspaces.Len(), "chords", m.keymap.Len())
	return nil
}

func (m *Manager) configure(ctx context.Context) {
	if err := m.InstallBindings(m.cfg.EffectiveBindings()); err != nil {
		m.logger.Warn("keymap installed with errors", "error", err)
	}
	if m.configurer != nil {
		if err := m.configurer.Configure(ctx); err != nil {
			m.logger.Error("user configuration failed", "error", err)
		}
	}
}

// InstallBindings builds a keymap from declarative bindings and installs it.
// Bindings that do not parse are logged and left out.
func (m *Manager) InstallBindings(bindings []config.Binding) error {
	b := make(keymap.Bindings, len(bindings))
	for _, binding := range bindings {
		chord, err := m.ParseChord(binding.Keys)
		if err != nil {
			m.logger.Warn("skipping binding", "keys", binding.Keys, "error", err)
			continue
		}
		action, err := m.Action(binding.Action, binding.Args...)
		if err != nil {
			m.logger.Warn("skipping binding", "keys", binding.Keys, "action", binding.Action, "error", err)
			continue
		}
		b[chord] = action
	}
	return m.InstallKeymap(b)
}

// InstallKeymap replaces the active keymap.
func (m *Manager) InstallKeymap(b keymap.Bindings) error {
	err := m.keymap.Install(b)
	m.recordState()
	return err
}

// ParseChord reads "Mod4-Shift-j" notation against the live keyboard map.
func (m *Manager) ParseChord(s string) (keymap.Chord, error) {
	return keymap.Parse(m.backend, s)
}

// Launch starts a program without waiting for it.
func (m *Manager) Launch(name string, args ...string) error {
	err := m.launcher.Launch(name, args...)
	m.metrics.ObserveLaunch(err)
	return err
}

// SetGap changes the spacing between tiles.
func (m *Manager) SetGap(gap int) error {
	if gap < 0 {
		return fmt.Errorf("gap must be >= 0, got %d", gap)
	}
	m.gap = gap
	return nil
}

// SetRatio changes the ratio given to new workspaces. Workspaces still at
// the previous default follow it.
func (m *Manager) SetRatio(ratio float64) error {
	if ratio < config.MinRatio || ratio > config.MaxRatio {
		return fmt.Errorf("ratio must be between %.1f and %.1f, got %g", config.MinRatio, config.MaxRatio, ratio)
	}
	m.setDefaultRatio(ratio)
	return nil
}

// SetLayout changes the tiling strategy.
func (m *Manager) SetLayout(name string) error {
	layout, err := tiling.ParseLayout(name)
	if err != nil {
		return err
	}
	m.layout = layout
	return nil
}

func (m *Manager) setDefaultRatio(ratio float64) {
	for _, ws := range m.workspaces.Items() {
		if ws.Ratio == m.ratio {
			ws.Ratio = ratio
		}
	}
	m.ratio = ratio
}

// Logout releases every grab, closes the display connection and stops Run.
// Calling it again has no effect.
func (m *Manager) Logout() {
	m.closeOnce.Do(func() {
		m.logger.Info("logging out")
		if err := m.keymap.Release(); err != nil {
			m.logger.Debug("releasing keymap", "error", err)
		}
		m.backend.Disconnect()
		m.cancel()
		close(m.done)
	})
}

// Done is closed after Logout.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Monitors returns the monitor stack contents, TOS first.
func (m *Manager) Monitors() []Monitor {
	return m.monitors.Items()
}

// Workspaces returns the workspace stack contents, TOS first.
func (m *Manager) Workspaces() []*Workspace {
	return m.workspaces.Items()
}

// Keymap returns the active keymap.
func (m *Manager) Keymap() *keymap.Keymap {
	return m.keymap
}

func (m *Manager) newWorkspace() *Workspace {
	m.workspaceSeq++
	return NewWorkspace(fmt.Sprint(m.workspaceSeq), m.ratio)
}

// focused returns the TOS workspace. Update guarantees one exists.
func (m *Manager) focused() *Workspace {
	ws, err := m.workspaces.Peek(0)
	if err != nil {
		ws = m.newWorkspace()
		m.workspaces.Push(ws)
	}
	return ws
}

// find locates a managed window. wsOffset is the workspace's offset from
// TOS and winOffset the window's offset within it.
func (m *Manager) find(id platform.WindowID) (ws *Workspace, wsOffset, winOffset int, ok bool) {
	for i, candidate := range m.workspaces.Items() {
		n := candidate.Windows.Index(func(w *Window) bool { return w.ID == id })
		if n >= 0 {
			return candidate, i, n, true
		}
	}
	return nil, -1, -1, false
}

// visible reports whether the workspace at offset n is drawn on a monitor.
func (m *Manager) visible(n int) bool {
	return n >= 0 && n < m.monitors.Len()
}

func (m *Manager) recordState() {
	if m.metrics == nil {
		return
	}
	windows := 0
	for _, ws := range m.workspaces.Items() {
		windows += ws.Windows.Len()
	}
	m.metrics.SetState(m.monitors.Len(), m.workspaces.Len(), windows, m.keymap.Len())
}
