package codec

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/dixieflatline76/Glint/pkg/crop"
	pigo "github.com/esimov/pigo/core"
	"github.com/muesli/smartcrop"
)

// Suggester picks a default crop for a display: the most interesting region
// at the display's aspect ratio, nudged to keep detected faces in frame.
type Suggester struct {
	tuning     Tuning
	resampler  imaging.ResampleFilter
	classifier *pigo.Pigo
}

// NewSuggester creates a Suggester. cascade is a packed pigo face cascade;
// with nil or empty data face detection is disabled.
func NewSuggester(t Tuning, cascade []byte) (*Suggester, error) {
	s := &Suggester{tuning: t, resampler: imaging.Lanczos}
	if len(cascade) == 0 {
		return s, nil
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	s.classifier = classifier
	return s, nil
}

// FaceDetection reports whether a face cascade is loaded.
func (s *Suggester) FaceDetection() bool {
	return s.classifier != nil
}

// Suggest returns a source-space crop for img at the aspect ratio of format.
func (s *Suggester) Suggest(ctx context.Context, img image.Image, format DisplayFormat) (crop.Rect, error) {
	if err := checkContext(ctx); err != nil {
		return crop.Rect{}, err
	}

	// smartcrop and pigo both work in zero-origin coordinates
	src := imaging.Clone(img)
	w, h := format.Size()

	r := &resizer{resampler: s.resampler}
	analyzer := smartcrop.NewAnalyzer(r)

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		topCrop, err := analyzer.FindBestCrop(src, w, h)
		resultChan <- cropResult{crop: topCrop, err: err}
	}()

	var best image.Rectangle
	select {
	case <-ctx.Done():
		return crop.Rect{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return crop.Rect{}, fmt.Errorf("finding best crop: %w", result.err)
		}
		best = result.crop.Intersect(src.Bounds())
	}

	if s.classifier != nil {
		if faces := s.detectFaces(src); !faces.Empty() {
			best = shiftToInclude(best, faces, src.Bounds())
		}
	}

	return crop.Rect{
		X:      float64(best.Min.X),
		Y:      float64(best.Min.Y),
		Width:  float64(best.Dx()),
		Height: float64(best.Dy()),
	}, nil
}

// detectFaces returns the union of confident face detections.
func (s *Suggester) detectFaces(img *image.NRGBA) image.Rectangle {
	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()
	minDim := min(cols, rows)

	params := pigo.CascadeParams{
		MinSize:     max(20, minDim*s.tuning.FaceDetectMinSizePct/100),
		MaxSize:     minDim,
		ShiftFactor: s.tuning.FaceDetectShift,
		ScaleFactor: s.tuning.FaceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := s.classifier.RunCascade(params, 0.0)
	dets = s.classifier.ClusterDetections(dets, s.tuning.FaceIoUThreshold)

	var union image.Rectangle
	for _, d := range dets {
		if d.Q < s.tuning.FaceDetectConfidence {
			continue
		}
		half := d.Scale / 2
		face := image.Rect(d.Col-half, d.Row-half, d.Col+half, d.Row+half)
		union = union.Union(face)
	}
	return union.Intersect(img.Bounds())
}

// shiftToInclude slides c, without resizing it, so that it covers as much of
// target as possible while staying inside bounds.
func shiftToInclude(c, target, bounds image.Rectangle) image.Rectangle {
	dx, dy := 0, 0

	switch {
	case target.Dx() > c.Dx():
		dx = (target.Min.X + target.Max.X - c.Min.X - c.Max.X) / 2
	case target.Min.X < c.Min.X:
		dx = target.Min.X - c.Min.X
	case target.Max.X > c.Max.X:
		dx = target.Max.X - c.Max.X
	}

	switch {
	case target.Dy() > c.Dy():
		dy = (target.Min.Y + target.Max.Y - c.Min.Y - c.Max.Y) / 2
	case target.Min.Y < c.Min.Y:
		dy = target.Min.Y - c.Min.Y
	case target.Max.Y > c.Max.Y:
		dy = target.Max.Y - c.Max.Y
	}

	out := c.Add(image.Pt(dx, dy))
	if out.Min.X < bounds.Min.X {
		out = out.Add(image.Pt(bounds.Min.X-out.Min.X, 0))
	}
	if out.Max.X > bounds.Max.X {
		out = out.Add(image.Pt(bounds.Max.X-out.Max.X, 0))
	}
	if out.Min.Y < bounds.Min.Y {
		out = out.Add(image.Pt(0, bounds.Min.Y-out.Min.Y))
	}
	if out.Max.Y > bounds.Max.Y {
		out = out.Add(image.Pt(0, bounds.Max.Y-out.Max.Y))
	}
	return out
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}
