package crop

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PreviewInterval is the minimum spacing of preview renders while dragging.
const PreviewInterval = 200 * time.Millisecond

// Throttle limits how often a callback runs during a drag. The first call of
// each drag runs immediately; Flush always runs.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	s        *rate.Sometimes
}

// NewThrottle returns a throttle with the given interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, s: &rate.Sometimes{Interval: interval}}
}

// Do runs f unless it ran less than interval ago.
func (t *Throttle) Do(f func()) {
	t.mu.Lock()
	s := t.s
	t.mu.Unlock()
	s.Do(f)
}

// Flush runs f unconditionally and re-arms the throttle for the next drag.
func (t *Throttle) Flush(f func()) {
	t.Reset()
	f()
}

// Reset makes the next Do run immediately.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.s = &rate.Sometimes{Interval: t.interval}
	t.mu.Unlock()
}
