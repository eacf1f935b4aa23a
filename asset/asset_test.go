package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetManager(t *testing.T) {
	am := NewManager()

	t.Run("GetIcon", func(t *testing.T) {
		icon, err := am.GetIcon("glint.png")
		require.NoError(t, err)
		assert.Equal(t, "glint.png", icon.Name())
		assert.NotEmpty(t, icon.Content())

		_, err = am.GetIcon("non_existent.png")
		assert.Error(t, err)

		_, err = am.GetIcon("")
		assert.Error(t, err)
	})

	t.Run("GetIconImage", func(t *testing.T) {
		img, err := am.GetIconImage("tray.png")
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())
	})

	t.Run("GetText", func(t *testing.T) {
		text, err := am.GetText("about.txt")
		assert.NoError(t, err)
		assert.Contains(t, text, "Glint")

		_, err = am.GetText("non_existent.txt")
		assert.Error(t, err)
	})
}
