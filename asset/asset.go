// Package asset holds the files embedded in the studio binary.
package asset

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png" // Register PNG decoder

	"fyne.io/fyne/v2"

	"github.com/dixieflatline76/Glint/util/log"
)

//go:embed icons/* text/*
var assets embed.FS

// Manager manages the loading of UI assets.
type Manager struct{}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetIcon loads and returns embedded icon asset by name.
func (am *Manager) GetIcon(name string) (fyne.Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("icon name is empty")
	}

	iconData, err := assets.ReadFile("icons/" + name)
	if err != nil {
		log.Println("Error loading icon:", err)
		return nil, err
	}

	return fyne.NewStaticResource(name, iconData), nil
}

// GetIconImage decodes an embedded icon, for callers that draw it themselves.
func (am *Manager) GetIconImage(name string) (image.Image, error) {
	data, err := assets.ReadFile("icons/" + name)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding icon %s: %w", name, err)
	}
	return img, nil
}

// GetText loads and returns embedded text asset by name.
func (am *Manager) GetText(name string) (string, error) {
	textBytes, err := assets.ReadFile("text/" + name)
	if err != nil {
		log.Println("Error loading text:", err)
		return "", err
	}
	return string(textBytes), nil
}
