// Package keymap maps key chords to actions and keeps the display server's
// key grabs in step with the active mapping.
package keymap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/stackwm/internal/platform"
)

var (
	// ErrUnknownKey is returned when a key symbol cannot be resolved.
	ErrUnknownKey = errors.New("unknown key")
	// ErrUnknownModifier is returned for modifier names outside the X set.
	ErrUnknownModifier = errors.New("unknown modifier")
)

// X core modifier masks.
const (
	ModShift   uint16 = 1 << 0
	ModLock    uint16 = 1 << 1
	ModControl uint16 = 1 << 2
	Mod1       uint16 = 1 << 3
	Mod2       uint16 = 1 << 4
	Mod3       uint16 = 1 << 5
	Mod4       uint16 = 1 << 6
	Mod5       uint16 = 1 << 7
)

var modifiers = map[string]uint16{
	"shift":   ModShift,
	"lock":    ModLock,
	"control": ModControl,
	"ctrl":    ModControl,
	"mod1":    Mod1,
	"alt":     Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"super":   Mod4,
	"win":     Mod4,
	"mod5":    Mod5,
}

var modifierNames = []struct {
	mask uint16
	name string
}{
	{Mod4, "Mod4"}, {Mod1, "Mod1"}, {ModControl, "Control"}, {ModShift, "Shift"},
	{Mod2, "Mod2"}, {Mod3, "Mod3"}, {Mod5, "Mod5"}, {ModLock, "Lock"},
}

// DefaultLockMods are the CapsLock and NumLock bits. Key events reach
// Dispatch with them removed.
const DefaultLockMods = ModLock | Mod2

// Resolver turns key symbol names into keycodes.
type Resolver interface {
	Keycode(sym string) (platform.Keycode, error)
}

// LockReporter is implemented by resolvers that know which modifier bits
// the server strips from key events. Other resolvers get DefaultLockMods.
type LockReporter interface {
	LockMods() uint16
}

func lockMods(r Resolver) uint16 {
	if lr, ok := r.(LockReporter); ok {
		return lr.LockMods()
	}
	return DefaultLockMods
}

// Chord is a keycode plus a modifier mask. It is comparable, so two chords
// built from the same key and modifiers are equal map keys.
type Chord struct {
	Code platform.Keycode
	Mods uint16
}

// NewChord builds a chord from raw values, as captured from an event.
func NewChord(code platform.Keycode, mods uint16) Chord {
	return Chord{Code: code, Mods: mods}
}

// FromSymbol resolves key through r and ORs the named modifiers together.
// Lock modifiers are rejected: a chord holding one could never be pressed.
func FromSymbol(r Resolver, key string, mods ...string) (Chord, error) {
	locks := lockMods(r)
	var mask uint16
	for _, name := range mods {
		m, err := Modifier(name)
		if err != nil {
			return Chord{}, err
		}
		if m&locks != 0 {
			return Chord{}, fmt.Errorf("%w %q: lock modifiers are ignored on key press", ErrUnknownModifier, name)
		}
		mask |= m
	}

	code, err := r.Keycode(key)
	if err != nil {
		return Chord{}, fmt.Errorf("%w %q: %v", ErrUnknownKey, key, err)
	}
	return Chord{Code: code, Mods: mask}, nil
}

// Parse reads the dash separated form "Mod4-Shift-j"; the last field is the
// key symbol.
func Parse(r Resolver, s string) (Chord, error) {
	fields := strings.Split(strings.TrimSpace(s), "-")
	key := fields[len(fields)-1]
	if key == "" {
		return Chord{}, fmt.Errorf("%w: empty key in %q", ErrUnknownKey, s)
	}
	return FromSymbol(r, key, fields[:len(fields)-1]...)
}

// Modifier returns the mask for a modifier name. Names are case-insensitive.
func Modifier(name string) (uint16, error) {
	m, ok := modifiers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownModifier, name)
	}
	return m, nil
}

func (c Chord) String() string {
	var b strings.Builder
	for _, m := range modifierNames {
		if c.Mods&m.mask != 0 {
			b.WriteString(m.name)
			b.WriteByte('-')
		}
	}
	fmt.Fprintf(&b, "%d", c.Code)
	return b.String()
}
