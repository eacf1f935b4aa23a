package codec

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRGB(t *testing.T) {
	out, err := PreviewRGB(context.Background(), encodePNG(t, solid(100, 100, color.White)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 240), img.Bounds())

	// Square is pillarboxed: edges black, centre white
	r, _, _, _ := img.At(2, 120).RGBA()
	assert.Less(t, r, uint32(0x2000))
	r, _, _, _ = img.At(160, 120).RGBA()
	assert.Greater(t, r, uint32(0xe000))
}

func TestRawRGB(t *testing.T) {
	src := solid(4, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	raw, err := RawRGB(context.Background(), encodePNG(t, src))
	require.NoError(t, err)
	require.Len(t, raw, 4*2*3)
	assert.Equal(t, []byte{10, 20, 30}, raw[:3])
	assert.Equal(t, []byte{10, 20, 30}, raw[len(raw)-3:])
}

func TestFlattenRGBOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	src.Set(6, 5, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, FlattenRGB(src))
}
