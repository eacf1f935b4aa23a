// Package sketch is a freehand drawing surface whose strokes are rasterized
// with gg and fed to the display codec.
package sketch

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
)

// Tool selects what a stroke does.
type Tool int

const (
	// Pen draws with the ink colour.
	Pen Tool = iota
	// Eraser paints with the background colour.
	Eraser
)

func (t Tool) String() string {
	if t == Eraser {
		return "eraser"
	}
	return "pen"
}

// Stroke width limits and defaults.
const (
	MinWidth          = 1.0
	MaxWidth          = 64.0
	DefaultPenWidth   = 5.0
	DefaultEraseWidth = 10.0

	DefaultCanvasWidth  = 512
	DefaultCanvasHeight = 256
)

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Stroke is one press-drag-release of a tool.
type Stroke struct {
	Tool   Tool
	Width  float64
	Points []Point
}

// Canvas records strokes and renders them. It is safe for concurrent use.
type Canvas struct {
	mu sync.Mutex

	width, height int
	tool          Tool
	penWidth      float64
	eraserWidth   float64
	inverted      bool

	strokes []Stroke
	undone  []Stroke
	current *Stroke
}

// NewCanvas creates an empty canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:       width,
		height:      height,
		penWidth:    DefaultPenWidth,
		eraserWidth: DefaultEraseWidth,
	}
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// SetTool switches between pen and eraser.
func (c *Canvas) SetTool(t Tool) {
	c.mu.Lock()
	c.tool = t
	c.mu.Unlock()
}

// Tool returns the active tool.
func (c *Canvas) Tool() Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

// SetWidth sets the width of the active tool, clamped to [MinWidth, MaxWidth].
func (c *Canvas) SetWidth(w float64) {
	w = min(max(w, MinWidth), MaxWidth)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tool == Eraser {
		c.eraserWidth = w
	} else {
		c.penWidth = w
	}
}

// Width returns the width of the active tool.
func (c *Canvas) Width() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tool == Eraser {
		return c.eraserWidth
	}
	return c.penWidth
}

// BeginStroke starts a stroke at (x, y) with the active tool.
func (c *Canvas) BeginStroke(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.penWidth
	if c.tool == Eraser {
		w = c.eraserWidth
	}
	c.current = &Stroke{Tool: c.tool, Width: w, Points: []Point{{x, y}}}
}

// AddPoint extends the stroke in progress. It is ignored when no stroke is
// in progress.
func (c *Canvas) AddPoint(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Points = append(c.current.Points, Point{x, y})
	}
}

// EndStroke commits the stroke in progress. It reports whether there was one.
func (c *Canvas) EndStroke() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	c.strokes = append(c.strokes, *c.current)
	c.current = nil
	c.undone = nil
	return true
}

// Undo removes the last committed stroke.
func (c *Canvas) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.strokes) == 0 {
		return false
	}
	last := c.strokes[len(c.strokes)-1]
	c.strokes = c.strokes[:len(c.strokes)-1]
	c.undone = append(c.undone, last)
	return true
}

// Redo restores the last undone stroke.
func (c *Canvas) Redo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.undone) == 0 {
		return false
	}
	last := c.undone[len(c.undone)-1]
	c.undone = c.undone[:len(c.undone)-1]
	c.strokes = append(c.strokes, last)
	return true
}

// Clear removes all strokes.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = nil
	c.undone = nil
	c.current = nil
}

// Invert clears the canvas and swaps ink and background.
func (c *Canvas) Invert() {
	c.Clear()
	c.mu.Lock()
	c.inverted = !c.inverted
	c.mu.Unlock()
}

// Inverted reports whether the canvas draws white on black.
func (c *Canvas) Inverted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverted
}

// Strokes returns a copy of the committed strokes.
func (c *Canvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, len(c.strokes))
	copy(out, c.strokes)
	return out
}

// Empty reports whether nothing has been drawn.
func (c *Canvas) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.strokes) == 0 && c.current == nil
}

// Render rasterizes every stroke, including one in progress.
func (c *Canvas) Render() (image.Image, error) {
	dc, err := c.render()
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// RenderPNG renders the canvas and encodes it as PNG.
func (c *Canvas) RenderPNG() ([]byte, error) {
	dc, err := c.render()
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding sketch: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Canvas) render() (*gg.Context, error) {
	c.mu.Lock()
	strokes := make([]Stroke, 0, len(c.strokes)+1)
	strokes = append(strokes, c.strokes...)
	if c.current != nil {
		strokes = append(strokes, *c.current)
	}
	inverted := c.inverted
	c.mu.Unlock()

	dc := gg.NewContext(c.width, c.height)

	bg, ink := 1.0, 0.0
	if inverted {
		bg, ink = ink, bg
	}
	dc.ClearWithColor(gg.RGB(bg, bg, bg))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	for _, s := range strokes {
		v := ink
		if s.Tool == Eraser {
			v = bg
		}
		dc.SetRGB(v, v, v)
		if err := drawStroke(dc, s); err != nil {
			dc.Close()
			return nil, fmt.Errorf("drawing %s stroke: %w", s.Tool, err)
		}
	}
	return dc, nil
}

// drawStroke draws a single tap as a dot and anything longer as a polyline.
func drawStroke(dc *gg.Context, s Stroke) error {
	if len(s.Points) == 0 {
		return nil
	}
	if len(s.Points) == 1 {
		p := s.Points[0]
		dc.DrawCircle(p.X, p.Y, s.Width/2)
		return dc.Fill()
	}

	dc.SetLineWidth(s.Width)
	dc.MoveTo(s.Points[0].X, s.Points[0].Y)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}
