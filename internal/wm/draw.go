package wm

import (
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/tiling"
)

// draw places the workspace at offset i on the monitor at offset i and
// parks every other workspace offscreen, then focuses the TOS window of
// the focused workspace.
func (m *Manager) draw() {
	monitors := m.monitors.Items()
	rects := make([]platform.Rect, len(monitors))
	for i, mon := range monitors {
		rects[i] = mon.Rect()
	}
	ox, oy := tiling.Offscreen(rects)

	for i, ws := range m.workspaces.Items() {
		if i < len(monitors) {
			m.drawWorkspace(monitors[i], ws, ox, oy)
		} else {
			m.hideWorkspace(ws, ox, oy)
		}
	}

	m.focus()
	m.recordState()
}

func (m *Manager) drawWorkspace(mon Monitor, ws *Workspace, ox, oy int) {
	windows := ws.Windows.Items()
	tiles := tiling.Arrange(len(windows), mon.Rect(), tiling.Params{
		Layout:     m.layout,
		Gap:        m.gap,
		Ratio:      ws.Ratio,
		Fullscreen: ws.Fullscreen,
	})

	for i, w := range windows {
		var err error
		if i < len(tiles) {
			t := tiles[i]
			err = w.Transform(t.X, t.Y, t.Width, t.Height)
		} else {
			err = w.Transform(ox, oy, 0, 0)
		}
		if err != nil {
			m.logger.Debug("transform failed", "window", w.ID, "error", err)
		}
	}
}

// hideWorkspace moves windows out of sight. They stay mapped so the server
// does not report them as unmapped.
func (m *Manager) hideWorkspace(ws *Workspace, ox, oy int) {
	for _, w := range ws.Windows.Items() {
		if err := w.Transform(ox, oy, 0, 0); err != nil {
			m.logger.Debug("hide failed", "window", w.ID, "error", err)
		}
	}
}

func (m *Manager) focus() {
	var target platform.WindowID
	if ws, err := m.workspaces.Peek(0); err == nil {
		if w, err := ws.Windows.Peek(0); err == nil {
			target = w.ID
		}
	}
	if err := m.backend.Focus(target); err != nil {
		m.logger.Debug("focus failed", "window", target, "error", err)
	}
}
