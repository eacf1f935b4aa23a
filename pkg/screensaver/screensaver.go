// Package screensaver cycles the colour panel through the RGB uploads.
package screensaver

import (
	"context"
	"sync"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/gallery"
	"github.com/dixieflatline76/Glint/util"
	"github.com/dixieflatline76/Glint/util/log"
)

// ErrInvalidInterval is returned for non-positive intervals.
var ErrInvalidInterval = gallery.ErrInvalidInterval

var rgbOnly = gallery.Filter{Display: codec.RGB320x240}

// Source lists the uploads the slideshow cycles through.
type Source interface {
	List(f gallery.Filter) []gallery.Upload
	Count(f gallery.Filter) int
	// UpdateChannel returns a channel closed on the next change.
	UpdateChannel() <-chan struct{}
}

// IntervalStore persists the slideshow interval.
type IntervalStore interface {
	ScreensaverInterval() int
	SetScreensaverInterval(seconds int) error
}

// State is a snapshot of the slideshow.
type State struct {
	IsRunning       bool `json:"isRunning"`
	CurrentIndex    int  `json:"currentIndex"`
	UploadCount     int  `json:"uploadCount"`
	IntervalSeconds int  `json:"intervalSeconds"`
}

// Controller runs the slideshow loop and handles navigation requests.
type Controller struct {
	source   Source
	pusher   gallery.Pusher
	settings IntervalStore

	index   *util.SafeIndex
	running *util.SafeFlag

	mu       sync.Mutex // serializes navigation and guards the fields below
	count    int
	interval int

	intervalCh chan time.Duration

	// OnChange is called after every state change.
	OnChange func(State)

	// unit converts interval seconds to a tick period
	unit time.Duration
}

// NewController creates a controller. The slideshow starts unpaused.
func NewController(source Source, pusher gallery.Pusher, settings IntervalStore) *Controller {
	return &Controller{
		source:     source,
		pusher:     pusher,
		settings:   settings,
		index:      util.NewSafeIndex(),
		running:    util.NewSafeBoolWithValue(true),
		interval:   gallery.DefaultScreensaverInterval,
		intervalCh: make(chan time.Duration, 1),
		unit:       time.Second,
	}
}

// Run loads the interval and advances the slideshow on every tick until ctx
// is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	updates := c.source.UpdateChannel()
	interval := c.settings.ScreensaverInterval()
	count := c.source.Count(rgbOnly)

	c.mu.Lock()
	c.interval = interval
	c.count = count
	c.index.Clamp(count)
	c.mu.Unlock()

	log.Printf("Screensaver initialized with %ds interval, %d RGB uploads available", interval, count)

	ticker := time.NewTicker(time.Duration(interval) * c.unit)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("Stopping screensaver")
			return nil
		case <-updates:
			updates = c.source.UpdateChannel()
			c.refresh()
		case d := <-c.intervalCh:
			log.Printf("Updating screensaver interval to %v", d)
			ticker.Reset(d)
		case <-ticker.C:
			if !c.running.Value() {
				continue
			}
			c.Next(ctx)
		}
	}
}

// refresh picks up uploads added or deleted behind the controller's back and
// keeps the index inside the shrunken ring.
func (c *Controller) refresh() {
	c.mu.Lock()
	before, at := c.count, c.index.Value()
	count := c.source.Count(rgbOnly)
	c.count = count
	idx := c.index.Clamp(count)
	c.mu.Unlock()

	if before != count || at != idx {
		c.changed()
	}
}

// Next shows the following upload, wrapping to the first.
func (c *Controller) Next(ctx context.Context) State {
	return c.step(ctx, c.index.Advance)
}

// Previous shows the preceding upload, wrapping to the last.
func (c *Controller) Previous(ctx context.Context) State {
	return c.step(ctx, c.index.Retreat)
}

func (c *Controller) step(ctx context.Context, move func(n int) int) State {
	c.mu.Lock()
	uploads := c.source.List(rgbOnly)
	if len(uploads) == 0 {
		c.count = 0
		c.mu.Unlock()
		log.Print("Screensaver: no RGB uploads available for slideshow")
		return c.State()
	}

	idx := move(len(uploads))
	c.count = len(uploads)
	upload := uploads[idx]
	c.mu.Unlock()

	log.Printf("Displaying image %d of %d: %s", idx+1, len(uploads), title(upload))
	c.push(ctx, upload, "Failed to push image to device (device may be offline)")
	return c.changed()
}

// Pause stops automatic advancing. Manual navigation still works.
func (c *Controller) Pause() State {
	log.Print("Pausing screensaver slideshow")
	c.running.Set(false)
	return c.changed()
}

// Resume restarts automatic advancing.
func (c *Controller) Resume() State {
	log.Print("Resuming screensaver slideshow")
	c.running.Set(true)
	return c.changed()
}

// SetInterval persists a new interval and re-arms the running loop.
func (c *Controller) SetInterval(seconds int) (State, error) {
	if seconds <= 0 {
		return c.State(), ErrInvalidInterval
	}
	if err := c.settings.SetScreensaverInterval(seconds); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	c.interval = seconds
	c.mu.Unlock()

	d := time.Duration(seconds) * c.unit
	select {
	case c.intervalCh <- d:
	default:
		// replace a pending, not yet applied interval
		select {
		case <-c.intervalCh:
		default:
		}
		c.intervalCh <- d
	}
	log.Printf("Setting screensaver interval to %ds", seconds)
	return c.changed(), nil
}

// State returns the current slideshow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		IsRunning:       c.running.Value(),
		CurrentIndex:    c.index.Value(),
		UploadCount:     c.count,
		IntervalSeconds: c.interval,
	}
}

// OnNewUpload shows a new colour upload immediately and restarts the cycle
// from it. Mono uploads are ignored.
func (c *Controller) OnNewUpload(ctx context.Context, u gallery.Upload) {
	if !u.Display.IsRGB() {
		return
	}
	log.Printf("New RGB upload received, displaying immediately: %s", title(u))
	c.push(ctx, u, "Failed to push new upload to device")

	c.mu.Lock()
	c.index.Set(0)
	c.count = c.source.Count(rgbOnly)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) push(ctx context.Context, u gallery.Upload, msg string) {
	if c.pusher == nil {
		return
	}
	if err := c.pusher.Push(ctx, u.Display, u.Data); err != nil {
		log.Printf("%s: %v", msg, err)
	}
}

func (c *Controller) changed() State {
	s := c.State()
	if c.OnChange != nil {
		c.OnChange(s)
	}
	return s
}

func title(u gallery.Upload) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return "Untitled"
}
