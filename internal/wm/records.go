package wm

import (
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/stack"
)

// Monitor is a display area. It is replaced, never edited, when the
// display configuration changes.
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the monitor geometry.
func (m Monitor) Rect() platform.Rect {
	return platform.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func monitorFromDisplay(d platform.Display) Monitor {
	return Monitor{
		Name:   d.Name,
		X:      d.Bounds.X,
		Y:      d.Bounds.Y,
		Width:  d.Bounds.Width,
		Height: d.Bounds.Height,
	}
}

// Workspace is an ordered group of windows drawn together on one monitor.
type Workspace struct {
	Name    string
	Windows *stack.Stack[*Window]
	// Fullscreen shows only the TOS window, covering the monitor.
	Fullscreen bool
	// Ratio scales each spiral split; 1.0 halves the remaining area.
	Ratio float64
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(name string, ratio float64) *Workspace {
	return &Workspace{
		Name:    name,
		Windows: stack.New[*Window](),
		Ratio:   ratio,
	}
}

// Window is a managed top-level client window.
type Window struct {
	ID      platform.WindowID
	backend platform.Backend
	geom    platform.Rect
}

// NewWindow wraps a server window id and records its current geometry,
// so a later Transform that omits a dimension keeps the real value.
func NewWindow(id platform.WindowID, backend platform.Backend) *Window {
	w := &Window{ID: id, backend: backend}
	if geom, err := backend.Geometry(id); err == nil {
		w.geom = geom
	}
	return w
}

// Transform moves the window to (x, y). With width and height both zero
// only the position changes; otherwise the window is also resized, and a
// zero dimension keeps its current value.
func (w *Window) Transform(x, y, width, height int) error {
	if width == 0 && height == 0 {
		if err := w.backend.Move(w.ID, x, y); err != nil {
			return err
		}
		w.geom.X, w.geom.Y = x, y
		return nil
	}

	if width == 0 {
		width = w.geom.Width
	}
	if height == 0 {
		height = w.geom.Height
	}
	bounds := platform.Rect{X: x, Y: y, Width: width, Height: height}
	if err := w.backend.MoveResize(w.ID, bounds); err != nil {
		return err
	}
	w.geom = bounds
	return nil
}

// Geometry returns the last geometry applied through Transform.
func (w *Window) Geometry() platform.Rect {
	return w.geom
}
