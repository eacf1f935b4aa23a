// Package gallery stores submitted images and pushes them to the displays.
package gallery

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dixieflatline76/Glint/pkg/codec"
)

var (
	// ErrNotFound is returned when no upload has the requested UUID.
	ErrNotFound = errors.New("could not find upload")
	// ErrInvalidUpload is returned when submitted data fails validation.
	ErrInvalidUpload = errors.New("invalid upload")
)

// TimestampLayout is how upload times travel over the API: UTC without a
// zone suffix, which the web front end appends itself.
const TimestampLayout = "2006-01-02T15:04:05.999999"

// Upload is a stored submission. Data holds the display payload: a packed
// 1bpp frame for ESP32, a JPEG for RGB320x240.
type Upload struct {
	UUID       string              `json:"uuid"`
	Name       *string             `json:"name,omitempty"`
	Message    *string             `json:"message,omitempty"`
	Data       []byte              `json:"data"`
	Public     bool                `json:"public"`
	UploadedAt time.Time           `json:"uploaded_at"`
	Display    codec.DisplayFormat `json:"display"`
}

// UploadInput is a submission as it arrives from a client.
type UploadInput struct {
	Name    *string `json:"name"`
	Message *string `json:"message"`
	Data    string  `json:"data"` // base64
	Public  bool    `json:"public"`
	Display string  `json:"display"`
}

// Validate decodes the payload and checks it fits the target display.
func (in UploadInput) Validate() ([]byte, codec.DisplayFormat, error) {
	display, err := codec.ParseDisplayFormat(in.Display)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	raw := in.Data
	if i := strings.Index(raw, ";base64,"); strings.HasPrefix(raw, "data:") && i >= 0 {
		raw = raw[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: data is not base64: %v", ErrInvalidUpload, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: data is empty", ErrInvalidUpload)
	}
	if !display.IsRGB() && len(data) > codec.MaxMonoPayload {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds %d for %s", ErrInvalidUpload, len(data), codec.MaxMonoPayload, display)
	}
	return data, display, nil
}

// UploadPatch holds the editable fields of an upload. Nil fields are left
// unchanged.
type UploadPatch struct {
	Name    *string
	Message *string
	Public  *bool
}

func (p UploadPatch) apply(u *Upload) {
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Message != nil {
		u.Message = p.Message
	}
	if p.Public != nil {
		u.Public = *p.Public
	}
}

// Filter selects uploads from the store.
type Filter struct {
	PublicOnly bool
	Display    codec.DisplayFormat // empty matches every display
}

func (f Filter) match(u Upload) bool {
	if f.PublicOnly && !u.Public {
		return false
	}
	if f.Display != "" && u.Display != f.Display {
		return false
	}
	return true
}
