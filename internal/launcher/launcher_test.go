package launcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExec_RunsProgram(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")

	require.NoError(t, NewExec(quiet()).Launch("touch", marker))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestExec_MissingProgram(t *testing.T) {
	err := NewExec(quiet()).Launch("definitely-not-a-real-program-stackwm")
	assert.Error(t, err)
}

func TestExec_EmptyCommand(t *testing.T) {
	assert.ErrorIs(t, NewExec(quiet()).Launch(""), ErrEmptyCommand)
}

func TestExec_Env(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "display")
	e := NewExec(quiet())
	e.Env = EnvWithDisplay([]string{"PATH=" + os.Getenv("PATH"), "OUT=" + marker}, ":7")

	require.NoError(t, e.Launch("sh", "-c", `printf %s "$DISPLAY" > "$OUT"`))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && string(data) == ":7"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestEnvWithDisplay(t *testing.T) {
	env := EnvWithDisplay([]string{"HOME=/root", "DISPLAY=:0", "LANG=C"}, ":1")
	assert.Equal(t, []string{"HOME=/root", "LANG=C", "DISPLAY=:1"}, env)
}
