package codec

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/dixieflatline76/Glint/pkg/crop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	src := solid(80, 40, color.White)
	for y := 0; y < 40; y++ {
		for x := 40; x < 80; x++ {
			src.Set(x, y, color.Black)
		}
	}
	data := encodePNG(t, src)

	out, err := Extract(context.Background(), data, crop.Rect{X: 40.2, Y: 0, Width: 19.5, Height: 10})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	r, _, _, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestExtractOutside(t *testing.T) {
	data := encodePNG(t, solid(10, 10, color.White))
	_, err := Extract(context.Background(), data, crop.Rect{X: 50, Y: 50, Width: 5, Height: 5})
	assert.ErrorIs(t, err, ErrEmptyCrop)
}
