// Package hotkey binds global shortcuts to the device slideshow.
package hotkey

import (
	"context"
	"time"

	"github.com/dixieflatline76/Glint/util/log"
	"golang.design/x/hotkey"
)

// repeatDelay swallows key repeats after an action fires.
const repeatDelay = 200 * time.Millisecond

// Slideshow is the remote slideshow the shortcuts drive.
type Slideshow interface {
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	TogglePause(ctx context.Context) (bool, error)
}

// Binding is one shortcut and what it does.
type Binding struct {
	Name     string
	Shortcut string
	Key      hotkey.Key
	Action   func(ctx context.Context) error
}

// Bindings returns the shortcuts for s: Ctrl+Alt+Right shows the next
// image, Ctrl+Alt+Left the previous one, Ctrl+Alt+Up pauses or resumes.
func Bindings(s Slideshow) []Binding {
	return []Binding{
		{Name: "Next Image", Shortcut: modPrefix + "Right", Key: keyRight, Action: s.Next},
		{Name: "Previous Image", Shortcut: modPrefix + "Left", Key: keyLeft, Action: s.Previous},
		{Name: "Pause/Resume Slideshow", Shortcut: modPrefix + "Up", Key: keyUp, Action: func(ctx context.Context) error {
			resumed, err := s.TogglePause(ctx)
			if err == nil {
				log.Printf("Slideshow %s", map[bool]string{true: "resumed", false: "paused"}[resumed])
			}
			return err
		}},
	}
}

// StartListeners registers the bindings for s and runs them until ctx is
// done. Shortcuts that fail to register are logged and skipped.
func StartListeners(ctx context.Context, s Slideshow) {
	if !supported {
		log.Print("Global hotkeys are not supported on this platform")
		return
	}

	for _, b := range Bindings(s) {
		hk := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, b.Key)
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register hotkey %s: %v", b.Name, err)
			continue
		}
		log.Printf("Registered hotkey: %s", b.Name)
		go listen(ctx, hk, b)
	}
}

func listen(ctx context.Context, hk *hotkey.Hotkey, b Binding) {
	defer func() {
		if err := hk.Unregister(); err != nil {
			log.Debugf("Unregistering hotkey %s: %v", b.Name, err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			log.Debugf("Hotkey pressed: %s", b.Name)
			run(ctx, b)
			time.Sleep(repeatDelay)
		}
	}
}

// run performs a binding's action with a bounded deadline.
func run(ctx context.Context, b Binding) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := b.Action(ctx); err != nil {
		log.Printf("Hotkey %s failed: %v", b.Name, err)
	}
}
