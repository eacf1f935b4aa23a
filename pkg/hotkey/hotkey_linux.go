//go:build linux

package hotkey

import "golang.design/x/hotkey"

// modPrefix names the modifiers in shortcut labels.
const modPrefix = "Ctrl+Alt+"

const supported = true

// Mod1 is Alt under X11.
const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.Mod1

	keyRight = hotkey.KeyRight
	keyLeft  = hotkey.KeyLeft
	keyUp    = hotkey.KeyUp
)
