// Package codec renders images for the embedded displays: packed 1bpp frames
// for the OLED, letterboxed JPEG and raw RGB for the colour panel.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"math"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrDecode wraps every image decoding failure.
var ErrDecode = errors.New("decoding image")

// Decode decodes an image from a byte slice with context awareness. PNG and
// JPEG are decoded directly when the content type says so; anything else is
// sniffed.
func Decode(ctx context.Context, data []byte, contentType string) (image.Image, string, error) {
	var img image.Image
	var err error
	var ext string

	if err := checkContext(ctx); err != nil {
		return nil, "", err
	}

	switch contentType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
		ext = "png"
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
		ext = "jpg"
	default:
		img, ext, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, ext, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := checkContext(ctx); err != nil {
		return nil, "", err
	}
	return img, ext, nil
}

// Encode encodes an image to a byte slice with context awareness.
func Encode(ctx context.Context, img image.Image, contentType string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	switch contentType {
	case "image/png":
		err = png.Encode(&buf, img)
	case "image/jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	default:
		return nil, fmt.Errorf("unsupported format: %s", contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Greet returns the greeting shown when the codec is loaded.
func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

// fitSize scales w x h to the largest size that fits inside maxW x maxH,
// enlarging small images as well as shrinking big ones.
func fitSize(w, h, maxW, maxH int) (int, int) {
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	return min(max(nw, 1), maxW), min(max(nh, 1), maxH)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
