package codec

import (
	"context"
	"errors"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/Glint/pkg/crop"
)

// ErrEmptyCrop is returned when a crop does not overlap the image.
var ErrEmptyCrop = errors.New("crop does not overlap image")

// Extract cuts a source-space rectangle out of an encoded image and returns
// it as PNG.
func Extract(ctx context.Context, data []byte, r crop.Rect) ([]byte, error) {
	img, _, err := Decode(ctx, data, "")
	if err != nil {
		return nil, err
	}

	rect := r.Image(img.Bounds())
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}
	return Encode(ctx, imaging.Crop(img, rect), "image/png", 0)
}
