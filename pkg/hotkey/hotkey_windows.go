//go:build windows

package hotkey

import "golang.design/x/hotkey"

// modPrefix names the modifiers in shortcut labels.
const modPrefix = "Ctrl+Alt+"

const supported = true

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.ModAlt

	keyRight = hotkey.KeyRight
	keyLeft  = hotkey.KeyLeft
	keyUp    = hotkey.KeyUp
)
