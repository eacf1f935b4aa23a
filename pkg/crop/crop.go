// Package crop maps a crop drawn on a letterboxed preview canvas back to
// pixel coordinates in the source image.
package crop

import (
	"errors"
	"image"
	"math"
)

// ErrDegenerateViewport is returned when a mapping would divide by a zero or
// non-finite draw size, or the source has no area.
var ErrDegenerateViewport = errors.New("crop: degenerate viewport")

// Size is the native pixel size of a decoded source image.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are positive and finite.
func (s Size) Valid() bool {
	return finitePositive(s.Width) && finitePositive(s.Height)
}

// Aspect returns width over height.
func (s Size) Aspect() float64 {
	return s.Width / s.Height
}

// SizeOf returns the size of an image's bounds.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Rect is a rectangle in either canvas or source space. In canvas space
// Width and Height are signed; the sign is the drag direction.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize returns the same area with a top-left origin and non-negative
// extent.
func (r Rect) Normalize() Rect {
	n := r
	if n.Width < 0 {
		n.X += n.Width
		n.Width = -n.Width
	}
	if n.Height < 0 {
		n.Y += n.Height
		n.Height = -n.Height
	}
	return n
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Contains reports whether (x, y) lies inside the normalized rectangle,
// edges included.
func (r Rect) Contains(x, y float64) bool {
	n := r.Normalize()
	return x >= n.X && x <= n.X+n.Width && y >= n.Y && y <= n.Y+n.Height
}

// Image converts a source-space rectangle to integer pixel bounds, flooring
// the origin and ceiling the far edge, clipped to bounds.
func (r Rect) Image(bounds image.Rectangle) image.Rectangle {
	n := r.Normalize()
	out := image.Rect(
		int(math.Floor(n.X)),
		int(math.Floor(n.Y)),
		int(math.Ceil(n.X+n.Width)),
		int(math.Ceil(n.Y+n.Height)),
	).Add(bounds.Min)
	return out.Intersect(bounds)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
