package keymap

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Action is the work bound to a chord. It runs on the event loop.
type Action func()

// Bindings maps each chord to exactly one action.
type Bindings map[Chord]Action

// Grabber captures and releases chords on the display server.
type Grabber interface {
	GrabKey(code platform.Keycode, mods uint16) error
	UngrabKey(code platform.Keycode, mods uint16) error
}

// Keymap is the active chord mapping. It is not safe for concurrent use;
// the window manager touches it only from the event loop.
type Keymap struct {
	grabber  Grabber
	logger   *slog.Logger
	bindings Bindings
}

// New returns an empty keymap that grabs through g.
func New(g Grabber, logger *slog.Logger) *Keymap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keymap{
		grabber:  g,
		logger:   logger.With("component", "keymap"),
		bindings: Bindings{},
	}
}

// Install replaces the active mapping with b. Every old chord is ungrabbed
// and every new chord grabbed, even when some of them fail; the failures
// are returned joined. Nothing is rolled back.
func (k *Keymap) Install(b Bindings) error {
	errs := k.ungrabAll()

	next := make(Bindings, len(b))
	for chord, action := range b {
		next[chord] = action
	}
	k.bindings = next

	for _, chord := range k.Chords() {
		if err := k.grabber.GrabKey(chord.Code, chord.Mods); err != nil {
			errs = append(errs, fmt.Errorf("grab %s: %w", chord, err))
		}
	}

	k.logger.Debug("keymap installed", "chords", len(next), "failures", len(errs))
	return errors.Join(errs...)
}

// Dispatch runs the action bound to (code, mods). It reports whether a
// binding existed.
func (k *Keymap) Dispatch(code platform.Keycode, mods uint16) bool {
	chord := NewChord(code, mods)
	action, ok := k.bindings[chord]
	if !ok || action == nil {
		k.logger.Debug("unbound chord", "chord", chord.String())
		return false
	}
	action()
	return true
}

// Release ungrabs every chord and clears the mapping.
func (k *Keymap) Release() error {
	errs := k.ungrabAll()
	k.bindings = Bindings{}
	return errors.Join(errs...)
}

// Len reports the number of bound chords.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// Chords returns the bound chords sorted by keycode then modifiers.
func (k *Keymap) Chords() []Chord {
	out := make([]Chord, 0, len(k.bindings))
	for chord := range k.bindings {
		out = append(out, chord)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Mods < out[j].Mods
	})
	return out
}

func (k *Keymap) ungrabAll() []error {
	var errs []error
	for _, chord := range k.Chords() {
		if err := k.grabber.UngrabKey(chord.Code, chord.Mods); err != nil {
			errs = append(errs, fmt.Errorf("ungrab %s: %w", chord, err))
		}
	}
	return errs
}
