package crop

import "math"

// NormalizeAspect snaps a signed drag extent to 2:1 (landscape) or 1:2
// (portrait) when locked, keeping the drag direction. The larger magnitude
// decides the orientation; equal magnitudes snap to portrait.
func NormalizeAspect(width, height float64, locked bool) (float64, float64) {
	if !locked {
		return width, height
	}

	aw, ah := math.Abs(width), math.Abs(height)
	sw, sh := sign(width), sign(height)

	if aw > ah {
		return sw * aw, sh * aw / 2
	}
	return sw * ah / 2, sh * ah
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
