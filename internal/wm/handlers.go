package wm

import "github.com/1broseidon/stackwm/internal/platform"

// onConfigureRequest grants the request as asked, then redraws a managed
// visible window so the tiled geometry wins.
func (m *Manager) onConfigureRequest(e platform.ConfigureRequest) {
	if err := m.backend.Configure(e); err != nil {
		m.logger.Debug("configure failed", "window", e.Window, "error", err)
	}
	if _, n, _, ok := m.find(e.Window); ok && m.visible(n) {
		m.draw()
	}
}

func (m *Manager) onKeyPress(e platform.KeyPress) {
	m.keymap.Dispatch(e.Code, e.Mods)
}

// onMapRequest manages a new window on the focused workspace before
// mapping it.
func (m *Manager) onMapRequest(e platform.MapRequest) {
	if _, _, _, ok := m.find(e.Window); !ok {
		m.focused().Windows.Push(NewWindow(e.Window, m.backend))
	}
	if err := m.backend.Map(e.Window); err != nil {
		m.logger.Warn("map failed", "window", e.Window, "error", err)
	}
	m.draw()
}

// onRemove forgets a window that was unmapped or destroyed.
func (m *Manager) onRemove(id platform.WindowID) {
	ws, wsOffset, winOffset, ok := m.find(id)
	if !ok {
		return
	}
	if _, err := ws.Windows.Remove(winOffset); err != nil {
		m.logger.Warn("remove window", "window", id, "error", err)
		return
	}
	if m.visible(wsOffset) {
		m.draw()
	} else {
		m.recordState()
	}
}
