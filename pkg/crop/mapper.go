package crop

import "math"

// MapToSource converts a canvas-space crop into a source-space rectangle.
// The result always lies inside [0, W] x [0, H] and is at least one pixel on
// each side (or the whole side of a source narrower than a pixel).
func MapToSource(c Rect, vp Viewport, src Size) (Rect, error) {
	if !vp.Valid() || !src.Valid() {
		return Rect{}, ErrDegenerateViewport
	}

	n := c.Normalize()
	scaleX := src.Width / vp.DrawWidth
	scaleY := src.Height / vp.DrawHeight

	imgX := (n.X - vp.OffsetX) * scaleX
	imgY := (n.Y - vp.OffsetY) * scaleY
	imgW := n.Width * scaleX
	imgH := n.Height * scaleY

	// the origin stays at least one pixel inside the far edge so the
	// minimum extent still fits
	minW, minH := math.Min(1, src.Width), math.Min(1, src.Height)
	x := clamp(imgX, 0, src.Width-minW)
	y := clamp(imgY, 0, src.Height-minH)
	return Rect{
		X:      x,
		Y:      y,
		Width:  clamp(imgW, minW, src.Width-x),
		Height: clamp(imgH, minH, src.Height-y),
	}, nil
}

// MapToCanvas is the inverse of MapToSource for an unclamped source
// rectangle: it returns where r is drawn on the canvas.
func MapToCanvas(r Rect, vp Viewport, src Size) (Rect, error) {
	if !vp.Valid() || !src.Valid() {
		return Rect{}, ErrDegenerateViewport
	}

	n := r.Normalize()
	scaleX := vp.DrawWidth / src.Width
	scaleY := vp.DrawHeight / src.Height

	return Rect{
		X:      n.X*scaleX + vp.OffsetX,
		Y:      n.Y*scaleY + vp.OffsetY,
		Width:  n.Width * scaleX,
		Height: n.Height * scaleY,
	}, nil
}

// clamp limits v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
