// Package device pushes rendered frames to the display hardware over HTTP.
package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/util/log"
)

var (
	// ErrNotConfigured is returned when no endpoint is set for a display.
	ErrNotConfigured = errors.New("device endpoint not configured")
	// ErrPayloadTooLarge is returned for mono frames the device cannot hold.
	ErrPayloadTooLarge = errors.New("upload data too large to push to device")
)

// Pusher sends frames to the mono OLED and the colour panel.
type Pusher struct {
	client  *http.Client
	monoURL string
	rgbURL  string
}

// NewPusher creates a Pusher. Either endpoint may be empty; pushes to that
// display then fail with ErrNotConfigured. A nil client uses NewHTTPClient.
func NewPusher(client *http.Client, monoURL, rgbURL string) *Pusher {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Pusher{client: client, monoURL: monoURL, rgbURL: rgbURL}
}

// Configured reports whether display has an endpoint.
func (p *Pusher) Configured(display codec.DisplayFormat) bool {
	if display.IsRGB() {
		return p.rgbURL != ""
	}
	return p.monoURL != ""
}

// Push sends data to the device for display. Colour payloads are encoded
// images and are decoded to raw RGB888 first; mono payloads are sent as is.
func (p *Pusher) Push(ctx context.Context, display codec.DisplayFormat, data []byte) error {
	if display.IsRGB() {
		if p.rgbURL == "" {
			return ErrNotConfigured
		}
		raw, err := codec.RawRGB(ctx, data)
		if err != nil {
			return fmt.Errorf("preparing RGB frame: %w", err)
		}
		if err := p.post(ctx, p.rgbURL, raw); err != nil {
			return fmt.Errorf("could not send to RGB device: %w", err)
		}
		return nil
	}

	if len(data) > codec.MaxMonoPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}
	if p.monoURL == "" {
		return ErrNotConfigured
	}
	if err := p.post(ctx, p.monoURL, data); err != nil {
		return fmt.Errorf("could not send to device: %w", err)
	}
	return nil
}

func (p *Pusher) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("device returned %s", resp.Status)
	}
	log.Debugf("Pushed %d bytes to %s", len(body), url)
	return nil
}
