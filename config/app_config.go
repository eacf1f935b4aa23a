package config

import "fyne.io/fyne/v2"

// ServerURLKey is the key for the gallery server URL preference
const ServerURLKey = "server_url"

// AppConfig holds the desktop studio configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// GetServerURL returns the base URL of the gallery server
func (c *AppConfig) GetServerURL() string {
	return c.prefs.StringWithFallback(ServerURLKey, DefaultServerURL)
}

// SetServerURL sets the base URL of the gallery server
func (c *AppConfig) SetServerURL(url string) {
	c.prefs.SetString(ServerURLKey, url)
}

// DisplayTypeKey is the key for the selected display preference
const DisplayTypeKey = "display_type"

// GetDisplayType returns the display tag previews are rendered for
func (c *AppConfig) GetDisplayType() string {
	return c.prefs.StringWithFallback(DisplayTypeKey, "RGB320x240")
}

// SetDisplayType sets the display tag previews are rendered for
func (c *AppConfig) SetDisplayType(display string) {
	c.prefs.SetString(DisplayTypeKey, display)
}

// AspectLockKey is the key for the crop aspect-lock preference
const AspectLockKey = "aspect_lock"

// GetAspectLock returns whether crops are locked to 2:1 / 1:2
func (c *AppConfig) GetAspectLock() bool {
	return c.prefs.BoolWithFallback(AspectLockKey, true)
}

// SetAspectLock sets whether crops are locked to 2:1 / 1:2
func (c *AppConfig) SetAspectLock(locked bool) {
	c.prefs.SetBool(AspectLockKey, locked)
}

// UploadNameKey is the key for the remembered uploader name
const UploadNameKey = "upload_name"

// GetUploadName returns the last name used when submitting
func (c *AppConfig) GetUploadName() string {
	return c.prefs.StringWithFallback(UploadNameKey, "")
}

// SetUploadName remembers the name used when submitting
func (c *AppConfig) SetUploadName(name string) {
	c.prefs.SetString(UploadNameKey, name)
}

// HotkeysEnabledKey is the key for the global slideshow hotkeys preference
const HotkeysEnabledKey = "hotkeys_enabled"

// GetHotkeysEnabled returns whether global slideshow hotkeys are registered
func (c *AppConfig) GetHotkeysEnabled() bool {
	return c.prefs.BoolWithFallback(HotkeysEnabledKey, false)
}

// SetHotkeysEnabled sets whether global slideshow hotkeys are registered
func (c *AppConfig) SetHotkeysEnabled(enabled bool) {
	c.prefs.SetBool(HotkeysEnabledKey, enabled)
}

// Reset removes every studio preference so the defaults apply again.
func (c *AppConfig) Reset() {
	for _, key := range []string{ServerURLKey, DisplayTypeKey, AspectLockKey, UploadNameKey, HotkeysEnabledKey} {
		c.prefs.RemoveValue(key)
	}
}
