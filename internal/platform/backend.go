package platform

import (
	"context"
	"errors"
)

// ErrDisconnected is returned by NextEvent once the display connection is gone.
var ErrDisconnected = errors.New("display connection closed")

// WindowID is a platform-neutral window identifier. Zero means the root window.
type WindowID uint32

// Keycode is a physical key code as reported by the display server.
type Keycode uint8

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Backend abstracts the display server operations the window manager needs.
type Backend interface {
	// BecomeWM claims substructure redirection on the root window and
	// announces the window manager name.
	BecomeWM(name string) error
	Displays() ([]Display, error)
	// NextEvent blocks until the server reports an event the window
	// manager handles.
	NextEvent(ctx context.Context) (Event, error)
	Configure(req ConfigureRequest) error
	Map(windowID WindowID) error
	// Geometry reports a window's current position and size.
	Geometry(windowID WindowID) (Rect, error)
	Move(windowID WindowID, x, y int) error
	MoveResize(windowID WindowID, bounds Rect) error
	Focus(windowID WindowID) error
	Close(windowID WindowID) error
	GrabKey(code Keycode, mods uint16) error
	UngrabKey(code Keycode, mods uint16) error
	Keycode(sym string) (Keycode, error)
	Disconnect()
}
