package x11

import (
	"errors"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrClosed is returned by WaitForEvent once the connection is gone.
var ErrClosed = errors.New("x11 connection closed")

// WaitForEvent blocks for the next event or protocol error. Keyboard
// mapping changes are absorbed here and never returned.
func (c *Connection) WaitForEvent() (xgb.Event, xgb.Error, error) {
	for {
		ev, xerr := c.XUtil.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, nil, ErrClosed
		}
		if mn, ok := ev.(xproto.MappingNotifyEvent); ok {
			if mn.Request != xproto.MappingPointer {
				c.refreshKeyboardMaps()
			}
			continue
		}
		return ev, xerr, nil
	}
}
