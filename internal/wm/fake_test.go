package wm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/keymap"
	"github.com/1broseidon/stackwm/internal/platform"
)

type fakeBackend struct {
	mu sync.Mutex

	displays []platform.Display
	keycodes map[string]platform.Keycode
	events   chan platform.Event

	becameWM     string
	becomeErr    error
	configured   []platform.ConfigureRequest
	mapped       []platform.WindowID
	geometry     map[platform.WindowID]platform.Rect
	focused      []platform.WindowID
	closed       []platform.WindowID
	grabbed      map[keymap.Chord]bool
	disconnected int
}

func newFakeBackend(displays ...platform.Rect) *fakeBackend {
	b := &fakeBackend{
		keycodes: map[string]platform.Keycode{},
		events:   make(chan platform.Event, 16),
		geometry: map[platform.WindowID]platform.Rect{},
		grabbed:  map[keymap.Chord]bool{},
	}
	for i, r := range displays {
		b.displays = append(b.displays, platform.Display{ID: i, Name: fmt.Sprintf("OUT-%d", i), Bounds: r})
	}
	// A keyboard good enough for the builtin bindings.
	code := platform.Keycode(10)
	for _, sym := range []string{"a", "f", "h", "j", "k", "l", "n", "q", "r", "s", "t",
		"1", "2", "3", "4", "5", "6", "7", "8", "9",
		"XF86AudioLowerVolume", "XF86AudioRaiseVolume", "XF86AudioMute"} {
		b.keycodes[sym] = code
		code++
	}
	return b
}

func (b *fakeBackend) BecomeWM(name string) error {
	b.becameWM = name
	return b.becomeErr
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) NextEvent(ctx context.Context) (platform.Event, error) {
	select {
	case ev, ok := <-b.events:
		if !ok {
			return nil, platform.ErrDisconnected
		}
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *fakeBackend) Configure(req platform.ConfigureRequest) error {
	b.configured = append(b.configured, req)
	return nil
}

func (b *fakeBackend) Map(id platform.WindowID) error {
	b.mapped = append(b.mapped, id)
	return nil
}

func (b *fakeBackend) Geometry(id platform.WindowID) (platform.Rect, error) {
	r, ok := b.geometry[id]
	if !ok {
		return platform.Rect{}, fmt.Errorf("bad window 0x%x", uint32(id))
	}
	return r, nil
}

func (b *fakeBackend) Move(id platform.WindowID, x, y int) error {
	r := b.geometry[id]
	r.X, r.Y = x, y
	b.geometry[id] = r
	return nil
}

func (b *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	b.geometry[id] = r
	return nil
}

func (b *fakeBackend) Focus(id platform.WindowID) error {
	b.focused = append(b.focused, id)
	return nil
}

func (b *fakeBackend) Close(id platform.WindowID) error {
	b.closed = append(b.closed, id)
	return nil
}

func (b *fakeBackend) GrabKey(code platform.Keycode, mods uint16) error {
	b.grabbed[keymap.NewChord(code, mods)] = true
	return nil
}

func (b *fakeBackend) UngrabKey(code platform.Keycode, mods uint16) error {
	delete(b.grabbed, keymap.NewChord(code, mods))
	return nil
}

func (b *fakeBackend) Keycode(sym string) (platform.Keycode, error) {
	code, ok := b.keycodes[sym]
	if !ok {
		return 0, fmt.Errorf("no keycode for %q", sym)
	}
	return code, nil
}

func (b *fakeBackend) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected++
}

func (b *fakeBackend) lastFocus() platform.WindowID {
	if len(b.focused) == 0 {
		return 0
	}
	return b.focused[len(b.focused)-1]
}

type fakeLauncher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (l *fakeLauncher) Launch(name string, args ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, append([]string{name}, args...))
	return l.err
}

type configurerFunc func(ctx context.Context) error

func (f configurerFunc) Configure(ctx context.Context) error { return f(ctx) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager returns a bootstrapped manager with no gaps so geometry
// assertions stay readable.
func newTestManager(b *fakeBackend, opts ...Option) (*Manager, *fakeLauncher) {
	cfg := config.DefaultConfig()
	cfg.Gap = 0
	l := &fakeLauncher{}
	opts = append([]Option{WithLogger(quietLogger()), WithLauncher(l)}, opts...)
	m := New(b, cfg, opts...)
	if err := m.Bootstrap(context.Background()); err != nil {
		panic(err)
	}
	return m, l
}

var (
	left  = platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right = platform.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
)
