package crop

// Viewport is where the source image is drawn inside the canvas. The image
// keeps its aspect ratio, so at most one of the offsets is non-zero.
type Viewport struct {
	DrawWidth  float64 `json:"drawWidth"`
	DrawHeight float64 `json:"drawHeight"`
	OffsetX    float64 `json:"offsetX"`
	OffsetY    float64 `json:"offsetY"`
}

// Valid reports whether the draw size can be divided by.
func (v Viewport) Valid() bool {
	return finitePositive(v.DrawWidth) && finitePositive(v.DrawHeight)
}

// ComputeViewport fits src inside a canvasWidth x canvasHeight canvas.
// Wider images span the full width and are centred vertically; everything
// else spans the full height and is centred horizontally.
func ComputeViewport(src Size, canvasWidth, canvasHeight float64) Viewport {
	canvasAspect := canvasWidth / canvasHeight
	imgAspect := src.Width / src.Height

	if imgAspect > canvasAspect {
		drawHeight := canvasWidth / imgAspect
		return Viewport{
			DrawWidth:  canvasWidth,
			DrawHeight: drawHeight,
			OffsetY:    (canvasHeight - drawHeight) / 2,
		}
	}

	drawWidth := canvasHeight * imgAspect
	return Viewport{
		DrawWidth:  drawWidth,
		DrawHeight: canvasHeight,
		OffsetX:    (canvasWidth - drawWidth) / 2,
	}
}
