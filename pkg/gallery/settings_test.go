package gallery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.json")
	s := NewSettings(file)
	require.NoError(t, s.Load())

	assert.Equal(t, "fallback", s.Get("missing", "fallback"))
	assert.Equal(t, DefaultScreensaverInterval, s.ScreensaverInterval())

	require.NoError(t, s.SetScreensaverInterval(30))
	assert.Equal(t, 30, s.ScreensaverInterval())

	assert.ErrorIs(t, s.SetScreensaverInterval(0), ErrInvalidInterval)
	assert.ErrorIs(t, s.SetScreensaverInterval(-5), ErrInvalidInterval)

	reloaded := NewSettings(file)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 30, reloaded.ScreensaverInterval())
}

func TestSettingsInvalidInterval(t *testing.T) {
	s := NewSettings("")
	require.NoError(t, s.Set(ScreensaverIntervalKey, "soon"))
	assert.Equal(t, DefaultScreensaverInterval, s.ScreensaverInterval())

	require.NoError(t, s.Set(ScreensaverIntervalKey, "-3"))
	assert.Equal(t, DefaultScreensaverInterval, s.ScreensaverInterval())
}

func TestSettingsCorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0644))
	assert.Error(t, NewSettings(file).Load())
}
