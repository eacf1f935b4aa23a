package codec

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Preview renders an encoded image as a packed 128x64 monochrome frame.
// Portrait images are rotated a quarter turn counter-clockwise, the result is
// scaled to fit and centred on black, then Floyd-Steinberg dithered. The
// output is always MonoBytes long.
func Preview(ctx context.Context, data []byte) ([]byte, error) {
	return PreviewWith(ctx, data, DefaultTuning())
}

// PreviewWith is Preview with explicit tuning.
func PreviewWith(ctx context.Context, data []byte, t Tuning) ([]byte, error) {
	img, _, err := Decode(ctx, data, "")
	if err != nil {
		return nil, err
	}
	gray := FitMono(img)
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return Pack(Dither(gray, t.DitherThreshold)), nil
}

// FitMono rotates portrait images to landscape, scales to fit 128x64 and
// pads with black.
func FitMono(img image.Image) *image.Gray {
	b := img.Bounds()
	if b.Dy() > b.Dx() {
		img = imaging.Rotate90(img)
		b = img.Bounds()
	}

	w, h := fitSize(b.Dx(), b.Dy(), MonoWidth, MonoHeight)
	resized := imaging.Resize(img, w, h, imaging.Linear)

	canvas := image.NewGray(image.Rect(0, 0, MonoWidth, MonoHeight))
	xOff := (MonoWidth - w) / 2
	yOff := (MonoHeight - h) / 2
	draw.Draw(canvas, image.Rect(xOff, yOff, xOff+w, yOff+h), resized, image.Point{}, draw.Over)
	return canvas
}

// Dither applies Floyd-Steinberg error diffusion and returns an image whose
// pixels are all 0 or 255.
func Dither(src *image.Gray, threshold float32) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = float32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			old := pixels[idx]
			var nv float32
			if old >= threshold {
				nv = 255
			}
			pixels[idx] = nv
			qErr := old - nv

			if x+1 < w {
				pixels[idx+1] += qErr * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					pixels[idx+w-1] += qErr * 3 / 16
				}
				pixels[idx+w] += qErr * 5 / 16
				if x+1 < w {
					pixels[idx+w+1] += qErr * 1 / 16
				}
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, p := range pixels {
		if p >= 128 {
			out.Pix[i] = 255
		}
	}
	return out
}

// Pack packs a grey image into a row-major, MSB-first bitstream. A set bit
// is a dark pixel (< 128). Rows are not padded.
func Pack(img *image.Gray) []byte {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	out := make([]byte, (n+7)/8)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y < 128 {
				out[i/8] |= 1 << (7 - uint(i%8))
			}
			i++
		}
	}
	return out
}

// Unpack expands a packed bitstream into a w x h grey image: set bits are
// black, clear bits white. Missing trailing bytes render white and extra
// bytes are ignored.
func Unpack(packed []byte, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
		if i/8 < len(packed) && packed[i/8]&(1<<(7-uint(i%8))) != 0 {
			img.Pix[i] = 0
		}
	}
	return img
}

// PackedToPNG renders packed mono data as a PNG.
func PackedToPNG(packed []byte, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	return Encode(context.Background(), Unpack(packed, w, h), "image/png", 0)
}
