package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/stackwm/internal/keymap"
	"github.com/1broseidon/stackwm/internal/platform"
)

type fakeResolver map[string]platform.Keycode

func (r fakeResolver) Keycode(sym string) (platform.Keycode, error) {
	code, ok := r[sym]
	if !ok {
		return 0, fmt.Errorf("no keycode for %q", sym)
	}
	return code, nil
}

type fakeHost struct {
	resolver fakeResolver
	ran      []string
	launched [][]string
	bindings keymap.Bindings
	installs int
	gap      int
	ratio    float64
	layout   string
}

func newFakeHost() *fakeHost {
	return &fakeHost{resolver: fakeResolver{"a": 38, "t": 28, "j": 44}}
}

func (h *fakeHost) Action(name string, args ...string) (keymap.Action, error) {
	if name == "bogus" {
		return nil, errors.New(`unknown action "bogus"`)
	}
	return func() { h.ran = append(h.ran, fmt.Sprint(name, args)) }, nil
}

func (h *fakeHost) ParseChord(s string) (keymap.Chord, error) {
	return keymap.Parse(h.resolver, s)
}

func (h *fakeHost) InstallKeymap(b keymap.Bindings) error {
	h.bindings = b
	h.installs++
	return nil
}

func (h *fakeHost) Launch(name string, args ...string) error {
	if name == "missing" {
		return errors.New("not found")
	}
	h.launched = append(h.launched, append([]string{name}, args...))
	return nil
}

func (h *fakeHost) SetGap(gap int) error { h.gap = gap; return nil }

func (h *fakeHost) SetRatio(ratio float64) error {
	if ratio > 1.9 {
		return errors.New("ratio out of range")
	}
	h.ratio = ratio
	return nil
}

func (h *fakeHost) SetLayout(name string) error { h.layout = name; return nil }

func (h *fakeHost) press(t *testing.T, s string) {
	t.Helper()
	chord, err := h.ParseChord(s)
	require.NoError(t, err)
	act, ok := h.bindings[chord]
	require.True(t, ok, "no binding for %s", s)
	act()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "init.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func run(t *testing.T, h *fakeHost, src string) error {
	t.Helper()
	return New(h, writeScript(t, src), time.Second, quietLogger()).Configure(context.Background())
}

func TestConfigure_MissingScript(t *testing.T) {
	h := newFakeHost()
	l := New(h, filepath.Join(t.TempDir(), "init.js"), time.Second, quietLogger())
	assert.NoError(t, l.Configure(context.Background()))
	assert.Zero(t, h.installs)
}

func TestConfigure_Keymap(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `
		var hits = 0;
		wm.keymap({
			"Mod4-j": wm.action("window.roll_left"),
			"Mod4-t": wm.launch("xterm", "-e", "top"),
			"Mod4-Shift-a": function () { hits++; wm.exec("notify-send", "hits", String(hits)); },
			"Mod4-nosuchkey": wm.action("wm.refresh"),
		});
	`)
	require.NoError(t, err)

	assert.Equal(t, 1, h.installs)
	assert.Len(t, h.bindings, 3, "unresolvable chords are skipped")

	h.press(t, "Mod4-j")
	h.press(t, "Mod4-t")
	h.press(t, "Mod4-Shift-a")
	h.press(t, "Mod4-Shift-a")

	assert.Equal(t, []string{"window.roll_left[]", "launch[xterm -e top]"}, h.ran)
	assert.Equal(t, [][]string{{"notify-send", "hits", "1"}, {"notify-send", "hits", "2"}}, h.launched)
}

func TestConfigure_UnknownActionThrows(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `wm.keymap({"Mod4-a": wm.action("bogus")});`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Zero(t, h.installs)
}

func TestConfigure_ActionErrorsCanBeCaught(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `
		try { wm.action("bogus"); } catch (e) { wm.exec("caught"); }
	`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"caught"}}, h.launched)
}

func TestConfigure_KeymapRejectsNonFunctions(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `wm.keymap({"Mod4-a": "xterm"});`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound to a function")
}

func TestConfigure_Set(t *testing.T) {
	h := newFakeHost()
	require.NoError(t, run(t, h, `wm.set({gap: 12, ratio: 1.2, layout: "grid"});`))
	assert.Equal(t, 12, h.gap)
	assert.InDelta(t, 1.2, h.ratio, 1e-9)
	assert.Equal(t, "grid", h.layout)

	err := run(t, h, `wm.set({ratio: 3});`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratio")

	err = run(t, h, `wm.set({border: 2});`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestConfigure_Exec(t *testing.T) {
	h := newFakeHost()
	require.NoError(t, run(t, h, `
		if (!wm.exec("feh", "--bg-fill", "/tmp/bg.png")) throw new Error("exec failed");
		if (wm.exec("missing")) throw new Error("missing program reported success");
	`))
	assert.Equal(t, [][]string{{"feh", "--bg-fill", "/tmp/bg.png"}}, h.launched)
}

func TestConfigure_Sandbox(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `
		for (const name of ["require", "process", "module", "exports"]) {
			if (typeof globalThis[name] !== "undefined") throw new Error(name + " is reachable");
		}
		console.log("hello", 1);
		wm.log("loaded");
	`)
	assert.NoError(t, err)
}

func TestConfigure_SyntaxError(t *testing.T) {
	err := run(t, newFakeHost(), `wm.keymap({`)
	assert.Error(t, err)
}

func TestConfigure_PartialEffectsKept(t *testing.T) {
	h := newFakeHost()
	err := run(t, h, `
		wm.set({gap: 4});
		throw new Error("later failure");
	`)
	require.Error(t, err)
	assert.Equal(t, 4, h.gap)
}

func TestConfigure_Timeout(t *testing.T) {
	h := newFakeHost()
	l := New(h, writeScript(t, `while (true) {}`), 50*time.Millisecond, quietLogger())

	err := l.Configure(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestConfigure_ContextCancel(t *testing.T) {
	h := newFakeHost()
	l := New(h, writeScript(t, `while (true) {}`), time.Minute, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Configure(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallback_TimeoutAndExceptionsAreContained(t *testing.T) {
	h := newFakeHost()
	l := New(h, writeScript(t, `
		wm.keymap({
			"Mod4-a": function () { while (true) {} },
			"Mod4-t": function () { throw new Error("boom"); },
			"Mod4-j": wm.action("window.roll_left"),
		});
	`), 50*time.Millisecond, quietLogger())
	require.NoError(t, l.Configure(context.Background()))

	h.press(t, "Mod4-a")
	h.press(t, "Mod4-t")
	h.press(t, "Mod4-j")
	assert.Equal(t, []string{"window.roll_left[]"}, h.ran, "the runtime stays usable after a failed callback")
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(filepath.Join(t.TempDir(), "absent.js")))
	assert.NoError(t, Check(writeScript(t, `wm.keymap({"Mod4-a": wm.launch("xterm")});`)))

	err := Check(writeScript(t, `wm.keymap({`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")
}
