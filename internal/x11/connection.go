package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrOtherWM is returned by BecomeWM when another client already holds
// substructure redirection on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	grabs grabSet
}

// NewConnection establishes a connection to the X11 server. An empty display
// uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Load the keyboard and modifier maps used for keysym resolution.
	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM selects substructure redirection on the root window and
// advertises name through _NET_SUPPORTING_WM_CHECK.
func (c *Connection) BecomeWM(name string) error {
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrOtherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}

	check := c.XUtil.Dummy()
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check, check); err != nil {
		return fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check, name); err != nil {
		return fmt.Errorf("set wm name: %w", err)
	}
	return nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
