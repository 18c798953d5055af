//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/stackwm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{conn: conn, logger: logger.With("component", "x11")}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// BecomeWM claims the root window.
func (b *LinuxBackend) BecomeWM(name string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.BecomeWM(name)
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active displays in enumeration order.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// NextEvent blocks until the server reports one of the events the window
// manager handles. Protocol errors are logged and skipped.
func (b *LinuxBackend) NextEvent(ctx context.Context) (Event, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, xerr, err := conn.WaitForEvent()
		if err != nil {
			if errors.Is(err, x11.ErrClosed) {
				return nil, ErrDisconnected
			}
			return nil, err
		}
		if xerr != nil {
			b.logger.Warn("x protocol error",
				"error", xerr.Error(),
				"sequence", xerr.SequenceId(),
				"resource", fmt.Sprintf("0x%x", xerr.BadId()))
			continue
		}

		if out, ok := decodeEvent(ev); ok {
			return out, nil
		}
	}
}

func decodeEvent(ev any) (Event, bool) {
	switch e := ev.(type) {
	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window:      WindowID(e.Window),
			Sibling:     WindowID(e.Sibling),
			X:           int(e.X),
			Y:           int(e.Y),
			Width:       int(e.Width),
			Height:      int(e.Height),
			BorderWidth: int(e.BorderWidth),
			StackMode:   e.StackMode,
			ValueMask:   e.ValueMask,
		}, true
	case xproto.KeyPressEvent:
		return KeyPress{Code: Keycode(e.Detail), Mods: x11.CleanMods(e.State)}, true
	case xproto.MapRequestEvent:
		return MapRequest{Window: WindowID(e.Window)}, true
	case xproto.UnmapNotifyEvent:
		return UnmapNotify{Window: WindowID(e.Window)}, true
	case xproto.DestroyNotifyEvent:
		return DestroyNotify{Window: WindowID(e.Window)}, true
	default:
		return nil, false
	}
}

// Configure grants a ConfigureRequest unchanged.
func (b *LinuxBackend) Configure(req ConfigureRequest) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ConfigureWindow(xproto.Window(req.Window), x11.Geometry{
		X:           req.X,
		Y:           req.Y,
		Width:       req.Width,
		Height:      req.Height,
		BorderWidth: req.BorderWidth,
		Sibling:     xproto.Window(req.Sibling),
		StackMode:   req.StackMode,
		ValueMask:   req.ValueMask,
	})
}

// Map makes a window visible.
func (b *LinuxBackend) Map(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MapWindow(xproto.Window(windowID))
}

// Geometry reads a window's current position and size from the server.
func (b *LinuxBackend) Geometry(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	x, y, w, h, err := conn.WindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// Move repositions a window without resizing it.
func (b *LinuxBackend) Move(windowID WindowID, x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	conn.MoveWindow(xproto.Window(windowID), x, y)
	return nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	conn.MoveResizeWindow(xproto.Window(windowID), bounds.X, bounds.Y, bounds.Width, bounds.Height)
	return nil
}

// Focus raises and focuses a window; zero focuses the root.
func (b *LinuxBackend) Focus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(windowID))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(windowID))
}

// GrabKey captures a chord on the root window.
func (b *LinuxBackend) GrabKey(code Keycode, mods uint16) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.GrabKey(xproto.Keycode(code), mods)
}

// UngrabKey releases a chord.
func (b *LinuxBackend) UngrabKey(code Keycode, mods uint16) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	conn.UngrabKey(xproto.Keycode(code), mods)
	return nil
}

// LockMods reports the lock modifier bits stripped from key events, so
// chords cannot be built on them.
func (b *LinuxBackend) LockMods() uint16 {
	return x11.LockMods()
}

// Keycode resolves a keysym name against the current keyboard map.
func (b *LinuxBackend) Keycode(sym string) (Keycode, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	code, err := conn.Keycode(sym)
	if err != nil {
		return 0, err
	}
	return Keycode(code), nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}
