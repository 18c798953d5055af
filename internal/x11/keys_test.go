package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/stretchr/testify/assert"
)

func TestCleanMods(t *testing.T) {
	saved := xevent.IgnoreMods
	t.Cleanup(func() { xevent.IgnoreMods = saved })

	numLock := uint16(xproto.ModMask2)
	xevent.IgnoreMods = []uint16{0, xproto.ModMaskLock, numLock, xproto.ModMaskLock | numLock}

	tests := []struct {
		name  string
		state uint16
		want  uint16
	}{
		{"plain", xproto.ModMask4, xproto.ModMask4},
		{"caps lock", xproto.ModMask4 | xproto.ModMaskLock, xproto.ModMask4},
		{"num lock", xproto.ModMask4 | xproto.ModMaskShift | numLock, xproto.ModMask4 | xproto.ModMaskShift},
		{"pointer button", xproto.ModMaskControl | xproto.KeyButMaskButton1, xproto.ModMaskControl},
		{"nothing", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMods(tt.state))
		})
	}
}

func TestGrabSet_UngrabsWithGrabTimeMasks(t *testing.T) {
	var s grabSet
	g := grab{code: 44, mods: xproto.ModMask4}

	before := []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}
	grabbed := s.add(g, before)
	assert.Equal(t, []uint16{
		xproto.ModMask4,
		xproto.ModMask4 | xproto.ModMaskLock,
		xproto.ModMask4 | xproto.ModMask2,
		xproto.ModMask4 | xproto.ModMaskLock | xproto.ModMask2,
	}, grabbed)

	// NumLock moved after a keyboard remap.
	after := []uint16{0, xproto.ModMaskLock, xproto.ModMask3, xproto.ModMaskLock | xproto.ModMask3}
	assert.Equal(t, grabbed, s.take(g, after))

	// Once released, the chord is unknown and the current list is used.
	assert.Equal(t, []uint16{
		xproto.ModMask4,
		xproto.ModMask4 | xproto.ModMaskLock,
		xproto.ModMask4 | xproto.ModMask3,
		xproto.ModMask4 | xproto.ModMaskLock | xproto.ModMask3,
	}, s.take(g, after))
}

func TestLockCombos_NoIgnoreList(t *testing.T) {
	assert.Equal(t, []uint16{xproto.ModMask1}, lockCombos(xproto.ModMask1, nil))
}

func TestLockMods(t *testing.T) {
	saved := xevent.IgnoreMods
	t.Cleanup(func() { xevent.IgnoreMods = saved })

	xevent.IgnoreMods = []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}
	assert.Equal(t, uint16(xproto.ModMaskLock|xproto.ModMask2), LockMods())
	assert.Equal(t, uint16(xproto.ModMask4), CleanMods(xproto.ModMask4|xproto.ModMaskLock))
}
