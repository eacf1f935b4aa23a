package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dixieflatline76/Glint/util/log"
)

// Settings keys.
const (
	ScreensaverIntervalKey = "screensaver.interval"

	// DefaultScreensaverInterval is used when no valid interval is stored.
	DefaultScreensaverInterval = 120
)

// ErrInvalidInterval is returned for non-positive slideshow intervals.
var ErrInvalidInterval = errors.New("interval must be positive")

// Settings is a small persisted key/value table for server-side options.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
	path   string
}

// NewSettings creates settings persisted at path. An empty path keeps them
// in memory only.
func NewSettings(path string) *Settings {
	return &Settings{values: make(map[string]string), path: path}
}

// Load reads the settings file. A missing file is not an error.
func (s *Settings) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decoding %s: %w", s.path, err)
	}
	s.values = values
	return nil
}

// Get returns the value for key, or def when unset.
func (s *Settings) Get(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores a value and writes the file.
func (s *Settings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.saveLocked()
}

// ScreensaverInterval returns the slideshow interval in seconds. Missing or
// invalid values fall back to DefaultScreensaverInterval.
func (s *Settings) ScreensaverInterval() int {
	raw := s.Get(ScreensaverIntervalKey, "")
	if raw == "" {
		return DefaultScreensaverInterval
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Settings: invalid %s %q, using %ds", ScreensaverIntervalKey, raw, DefaultScreensaverInterval)
		return DefaultScreensaverInterval
	}
	return v
}

// SetScreensaverInterval persists the slideshow interval.
func (s *Settings) SetScreensaverInterval(seconds int) error {
	if seconds <= 0 {
		return ErrInvalidInterval
	}
	return s.Set(ScreensaverIntervalKey, strconv.Itoa(seconds))
}

// CALLER MUST HOLD s.mu.Lock()
func (s *Settings) saveLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return os.Rename(tmp, s.path)
}
