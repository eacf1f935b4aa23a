//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// modPrefix names the modifiers in shortcut labels.
const modPrefix = "Cmd+Option+"

const supported = true

const (
	modCtrl = hotkey.ModCmd
	modAlt  = hotkey.ModOption

	keyRight = hotkey.KeyRight
	keyLeft  = hotkey.KeyLeft
	keyUp    = hotkey.KeyUp
)
