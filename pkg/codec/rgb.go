package codec

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// PreviewRGB renders an encoded image as a 320x240 JPEG: scaled to fit,
// centred on black.
func PreviewRGB(ctx context.Context, data []byte) ([]byte, error) {
	return PreviewRGBWith(ctx, data, DefaultTuning())
}

// PreviewRGBWith is PreviewRGB with explicit tuning.
func PreviewRGBWith(ctx context.Context, data []byte, t Tuning) ([]byte, error) {
	img, _, err := Decode(ctx, data, "")
	if err != nil {
		return nil, err
	}
	return Encode(ctx, FitRGB(img), "image/jpeg", t.EncodingQuality)
}

// FitRGB scales img to fit 320x240 and pads it with black.
func FitRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), RGBWidth, RGBHeight)
	resized := imaging.Resize(img, w, h, imaging.Linear)

	canvas := imaging.New(RGBWidth, RGBHeight, color.Black)
	return imaging.Paste(canvas, resized, image.Pt((RGBWidth-w)/2, (RGBHeight-h)/2))
}

// RawRGB decodes an image and flattens it to packed RGB888, row-major,
// which is what the colour panel reads from its push endpoint.
func RawRGB(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := Decode(ctx, data, "")
	if err != nil {
		return nil, err
	}
	return FlattenRGB(img), nil
}

// FlattenRGB drops alpha and returns 3 bytes per pixel.
func FlattenRGB(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for i := 0; i < len(rgba.Pix); i += 4 {
		out = append(out, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
	}
	return out
}
