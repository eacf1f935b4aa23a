//go:build !darwin && !windows && !linux

package hotkey

import "golang.design/x/hotkey"

// modPrefix names the modifiers in shortcut labels.
const modPrefix = "Ctrl+Alt+"

const supported = false

const (
	modCtrl = hotkey.Modifier(0) // Dummy for default
	modAlt  = hotkey.Modifier(0)

	keyRight = hotkey.Key(0)
	keyLeft  = hotkey.Key(0)
	keyUp    = hotkey.Key(0)
)
