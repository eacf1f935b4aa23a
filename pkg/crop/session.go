package crop

import "sync"

// Session holds the interactive crop state for one canvas: the current
// canvas-space rectangle and whether the pointer is drawing a new crop or
// dragging the existing one.
type Session struct {
	mu         sync.Mutex
	rect       Rect
	drawing    bool
	dragging   bool
	dragX      float64
	dragY      float64
	locked     bool
	hasCurrent bool
}

// NewSession returns an empty session with the given aspect lock.
func NewSession(locked bool) *Session {
	return &Session{locked: locked}
}

// Begin handles a pointer press. A press inside the current crop starts a
// drag; anywhere else starts a new zero-size crop anchored at the point.
func (s *Session) Begin(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCurrent && !s.rect.Empty() && s.rect.Contains(x, y) {
		s.rect = s.rect.Normalize()
		s.dragging = true
		s.dragX = x - s.rect.X
		s.dragY = y - s.rect.Y
		return
	}

	s.rect = Rect{X: x, Y: y}
	s.hasCurrent = true
	s.drawing = true
}

// Move handles pointer motion and returns the updated rectangle. The bool is
// false when no press is in progress.
func (s *Session) Move(x, y float64) (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.dragging:
		s.rect.X = x - s.dragX
		s.rect.Y = y - s.dragY
	case s.drawing:
		s.rect.Width, s.rect.Height = NormalizeAspect(x-s.rect.X, y-s.rect.Y, s.locked)
	default:
		return s.rect, false
	}
	return s.rect, true
}

// End handles pointer release. It returns the final rectangle and whether it
// has any area.
func (s *Session) End() (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drawing = false
	s.dragging = false
	if !s.hasCurrent || s.rect.Empty() {
		return s.rect, false
	}
	return s.rect, true
}

// Clear drops the current crop.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rect = Rect{}
	s.hasCurrent = false
	s.drawing = false
	s.dragging = false
}

// SetLocked toggles the 2:1 aspect lock for subsequent resizes.
func (s *Session) SetLocked(locked bool) {
	s.mu.Lock()
	s.locked = locked
	s.mu.Unlock()
}

// Locked reports the aspect lock.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Rect returns the current crop and whether one exists.
func (s *Session) Rect() (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rect, s.hasCurrent && !s.rect.Empty()
}

// Set replaces the current crop, e.g. with a suggested one.
func (s *Session) Set(r Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rect = r
	s.hasCurrent = true
	s.drawing = false
	s.dragging = false
}

// Active reports whether a press is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing || s.dragging
}
