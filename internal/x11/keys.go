package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrNoKeycode is returned when a keysym is not present on the keyboard.
var ErrNoKeycode = errors.New("keysym has no keycode")

// Keycode resolves a keysym name ("j", "Return", "F1") to the first keycode
// that produces it.
func (c *Connection) Keycode(sym string) (xproto.Keycode, error) {
	codes := keybind.StrToKeycodes(c.XUtil, sym)
	if len(codes) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoKeycode, sym)
	}
	return codes[0], nil
}

// GrabKey grabs a chord on the root window for every ignorable lock
// modifier combination, with asynchronous pointer and keyboard modes.
func (c *Connection) GrabKey(code xproto.Keycode, mods uint16) error {
	var errs []error
	for _, mask := range c.grabs.add(grab{code, mods}, xevent.IgnoreMods) {
		err := xproto.GrabKeyChecked(c.XUtil.Conn(), true, c.Root, mask, code,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UngrabKey releases a chord grabbed with GrabKey, using the lock
// combinations in force when it was grabbed.
func (c *Connection) UngrabKey(code xproto.Keycode, mods uint16) {
	for _, mask := range c.grabs.take(grab{code, mods}, xevent.IgnoreMods) {
		xproto.UngrabKey(c.XUtil.Conn(), code, c.Root, mask)
	}
}

type grab struct {
	code xproto.Keycode
	mods uint16
}

// grabSet records the exact masks each chord was grabbed with. The ignore
// list changes when the keyboard is remapped.
type grabSet struct {
	mu    sync.Mutex
	masks map[grab][]uint16
}

func (s *grabSet) add(g grab, ignore []uint16) []uint16 {
	masks := lockCombos(g.mods, ignore)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.masks == nil {
		s.masks = make(map[grab][]uint16)
	}
	s.masks[g] = masks
	return masks
}

// take forgets g and returns its masks. Unknown chords fall back to the
// current ignore list.
func (s *grabSet) take(g grab, ignore []uint16) []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if masks, ok := s.masks[g]; ok {
		delete(s.masks, g)
		return masks
	}
	return lockCombos(g.mods, ignore)
}

func lockCombos(mods uint16, ignore []uint16) []uint16 {
	if len(ignore) == 0 {
		return []uint16{mods}
	}
	masks := make([]uint16, 0, len(ignore))
	for _, m := range ignore {
		masks = append(masks, mods|m)
	}
	return masks
}

// CleanMods strips pointer buttons and ignorable lock modifiers from a
// KeyPress state so it compares equal to the grabbed mask.
func CleanMods(state uint16) uint16 {
	return state & 0xff &^ LockMods()
}

// LockMods returns the modifier bits CleanMods strips.
func LockMods() uint16 {
	var mask uint16
	for _, m := range xevent.IgnoreMods {
		mask |= m
	}
	return mask
}

// refreshKeyboardMaps reloads the keyboard and modifier maps after a
// MappingNotify.
func (c *Connection) refreshKeyboardMaps() {
	keyMap, modMap := keybind.MapsGet(c.XUtil)
	keybind.KeyMapSet(c.XUtil, keyMap)
	keybind.ModMapSet(c.XUtil, modMap)
	configureIgnoreMods(c.XUtil)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
