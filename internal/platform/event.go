package platform

import "fmt"

// Event is one decoded server event. The set of variants is closed.
type Event interface {
	fmt.Stringer
	event()
}

// ConfigureRequest is a client asking to change its own geometry.
type ConfigureRequest struct {
	Window      WindowID
	Sibling     WindowID
	X           int
	Y           int
	Width       int
	Height      int
	BorderWidth int
	StackMode   uint8
	ValueMask   uint16
}

// KeyPress is a grabbed chord being pressed. Mods has lock modifiers removed.
type KeyPress struct {
	Code Keycode
	Mods uint16
}

// MapRequest is a client asking to become visible.
type MapRequest struct {
	Window WindowID
}

// UnmapNotify reports a window that became invisible.
type UnmapNotify struct {
	Window WindowID
}

// DestroyNotify reports a window whose server handle is gone.
type DestroyNotify struct {
	Window WindowID
}

func (ConfigureRequest) event() {}
func (KeyPress) event()         {}
func (MapRequest) event()       {}
func (UnmapNotify) event()      {}
func (DestroyNotify) event()    {}

func (e ConfigureRequest) String() string {
	return fmt.Sprintf("ConfigureRequest(0x%x %dx%d+%d+%d)", uint32(e.Window), e.Width, e.Height, e.X, e.Y)
}

func (e KeyPress) String() string {
	return fmt.Sprintf("KeyPress(code=%d mods=0x%x)", e.Code, e.Mods)
}

func (e MapRequest) String() string    { return fmt.Sprintf("MapRequest(0x%x)", uint32(e.Window)) }
func (e UnmapNotify) String() string   { return fmt.Sprintf("UnmapNotify(0x%x)", uint32(e.Window)) }
func (e DestroyNotify) String() string { return fmt.Sprintf("DestroyNotify(0x%x)", uint32(e.Window)) }

// Kind returns a short label for an event, used for logs and metrics.
func Kind(ev Event) string {
	switch ev.(type) {
	case ConfigureRequest:
		return "configure_request"
	case KeyPress:
		return "key_press"
	case MapRequest:
		return "map_request"
	case UnmapNotify:
		return "unmap_notify"
	case DestroyNotify:
		return "destroy_notify"
	default:
		return "other"
	}
}
