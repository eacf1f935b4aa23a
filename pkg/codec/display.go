package codec

import (
	"errors"
	"fmt"
)

// DisplayFormat identifies the hardware an image is rendered for.
type DisplayFormat string

const (
	// ESP32 is the 128x64 monochrome OLED. Payloads are packed 1bpp.
	ESP32 DisplayFormat = "ESP32"
	// RGB320x240 is the 320x240 colour panel. Payloads are JPEG.
	RGB320x240 DisplayFormat = "RGB320x240"
)

// Display geometry.
const (
	MonoWidth  = 128
	MonoHeight = 64
	// MonoBytes is the size of a packed monochrome frame.
	MonoBytes = MonoWidth * MonoHeight / 8
	// MaxMonoPayload is the largest mono upload the device accepts.
	MaxMonoPayload = 1025

	RGBWidth  = 320
	RGBHeight = 240
)

// ErrUnknownDisplay is returned for display tags that are not recognised.
var ErrUnknownDisplay = errors.New("unknown display format")

// ParseDisplayFormat maps a gallery display tag to a DisplayFormat. Both the
// canonical tags and the spellings older clients send are accepted; an empty
// tag means ESP32.
func ParseDisplayFormat(tag string) (DisplayFormat, error) {
	switch tag {
	case "", "ESP32", "Esp32":
		return ESP32, nil
	case "RGB320x240", "RGB_320x240":
		return RGB320x240, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDisplay, tag)
	}
}

// Size returns the pixel dimensions of the display.
func (d DisplayFormat) Size() (int, int) {
	if d == RGB320x240 {
		return RGBWidth, RGBHeight
	}
	return MonoWidth, MonoHeight
}

// IsRGB reports whether the display takes colour JPEG payloads.
func (d DisplayFormat) IsRGB() bool {
	return d == RGB320x240
}

// ContentType returns the MIME type of payloads for this display.
func (d DisplayFormat) ContentType() string {
	if d.IsRGB() {
		return "image/jpeg"
	}
	return "application/octet-stream"
}

func (d DisplayFormat) String() string {
	return string(d)
}
