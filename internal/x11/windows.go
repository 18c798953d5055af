package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is the subset of a ConfigureRequest the window manager forwards.
type Geometry struct {
	X, Y          int
	Width, Height int
	BorderWidth   int
	Sibling       xproto.Window
	StackMode     byte
	ValueMask     uint16
}

// ConfigureWindow grants a client's ConfigureRequest as asked. Only the
// fields named in ValueMask are sent, in protocol order.
func (c *Connection) ConfigureWindow(windowID xproto.Window, g Geometry) error {
	var (
		mask   uint16
		values []uint32
	)
	add := func(bit uint16, v uint32) {
		if g.ValueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(xproto.ConfigWindowX, uint32(int32(g.X)))
	add(xproto.ConfigWindowY, uint32(int32(g.Y)))
	add(xproto.ConfigWindowWidth, uint32(g.Width))
	add(xproto.ConfigWindowHeight, uint32(g.Height))
	add(xproto.ConfigWindowBorderWidth, uint32(g.BorderWidth))
	add(xproto.ConfigWindowSibling, uint32(g.Sibling))
	add(xproto.ConfigWindowStackMode, uint32(g.StackMode))

	if mask == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
}

// MapWindow makes a window visible.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// WindowGeometry returns a window's position and size relative to its
// parent.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(geom.X), int(geom.Y), int(geom.Width), int(geom.Height), nil
}

// MoveWindow changes only the position of a window.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) {
	xwindow.New(c.XUtil, windowID).Move(x, y)
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// X rejects zero sizes, so both dimensions are clamped to one pixel.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) {
	xwindow.New(c.XUtil, windowID).MoveResize(x, y, max(width, 1), max(height, 1))
}

// FocusWindow raises a window and gives it input focus. Zero focuses the
// root window.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	if windowID == 0 {
		windowID = c.Root
	} else {
		xwindow.New(c.XUtil, windowID).Stack(xproto.StackModeAbove)
	}
	return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		windowID, xproto.TimeCurrentTime).Check()
}

// CloseWindow politely asks a client to close through WM_DELETE_WINDOW and
// falls back to killing the client when the protocol is not supported.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	if c.supportsProtocol(windowID, "WM_DELETE_WINDOW") {
		return c.sendDeleteWindow(windowID)
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(windowID)).Check()
}

func (c *Connection) supportsProtocol(windowID xproto.Window, name string) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == name {
			return true
		}
	}
	return false
}

func (c *Connection) sendDeleteWindow(windowID xproto.Window) error {
	wmProtocols, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return fmt.Errorf("intern WM_PROTOCOLS: %w", err)
	}
	wmDelete, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return fmt.Errorf("intern WM_DELETE_WINDOW: %w", err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(wmDelete), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, windowID,
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}
