package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockPreferences implements fyne.Preferences for testing
type MockPreferences struct {
	data map[string]interface{}
}

func NewMockPreferences() *MockPreferences {
	return &MockPreferences{
		data: make(map[string]interface{}),
	}
}

func (m *MockPreferences) Bool(key string) bool {
	val, ok := m.data[key]
	if !ok {
		return false
	}
	return val.(bool)
}

func (m *MockPreferences) BoolWithFallback(key string, fallback bool) bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(bool)
}

func (m *MockPreferences) SetBool(key string, value bool) {
	m.data[key] = value
}

func (m *MockPreferences) Float(key string) float64 {
	val, ok := m.data[key]
	if !ok {
		return 0.0
	}
	return val.(float64)
}

func (m *MockPreferences) FloatWithFallback(key string, fallback float64) float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(float64)
}

func (m *MockPreferences) SetFloat(key string, value float64) {
	m.data[key] = value
}

func (m *MockPreferences) Int(key string) int {
	val, ok := m.data[key]
	if !ok {
		return 0
	}
	return val.(int)
}

func (m *MockPreferences) IntWithFallback(key string, fallback int) int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(int)
}

func (m *MockPreferences) SetInt(key string, value int) {
	m.data[key] = value
}

func (m *MockPreferences) String(key string) string {
	val, ok := m.data[key]
	if !ok {
		return ""
	}
	return val.(string)
}

func (m *MockPreferences) StringWithFallback(key string, fallback string) string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.(string)
}

func (m *MockPreferences) SetString(key string, value string) {
	m.data[key] = value
}

func (m *MockPreferences) StringList(key string) []string {
	val, ok := m.data[key]
	if !ok {
		return []string{}
	}
	return val.([]string)
}

func (m *MockPreferences) StringListWithFallback(key string, fallback []string) []string {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]string)
}

func (m *MockPreferences) SetStringList(key string, value []string) {
	m.data[key] = value
}

func (m *MockPreferences) BoolList(key string) []bool {
	val, ok := m.data[key]
	if !ok {
		return []bool{}
	}
	return val.([]bool)
}

func (m *MockPreferences) BoolListWithFallback(key string, fallback []bool) []bool {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]bool)
}

func (m *MockPreferences) SetBoolList(key string, value []bool) {
	m.data[key] = value
}

func (m *MockPreferences) FloatList(key string) []float64 {
	val, ok := m.data[key]
	if !ok {
		return []float64{}
	}
	return val.([]float64)
}

func (m *MockPreferences) FloatListWithFallback(key string, fallback []float64) []float64 {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]float64)
}

func (m *MockPreferences) SetFloatList(key string, value []float64) {
	m.data[key] = value
}

func (m *MockPreferences) IntList(key string) []int {
	val, ok := m.data[key]
	if !ok {
		return []int{}
	}
	return val.([]int)
}

func (m *MockPreferences) IntListWithFallback(key string, fallback []int) []int {
	val, ok := m.data[key]
	if !ok {
		return fallback
	}
	return val.([]int)
}

func (m *MockPreferences) SetIntList(key string, value []int) {
	m.data[key] = value
}

func (m *MockPreferences) RemoveValue(key string) {
	delete(m.data, key)
}

func (m *MockPreferences) AddChangeListener(func()) {
	// No-op for now
}

func (m *MockPreferences) ChangeListeners() []func() {
	return []func(){}
}

func TestAppConfig(t *testing.T) {
	prefs := NewMockPreferences()
	cfg := NewAppConfig(prefs)

	t.Run("ServerURL", func(t *testing.T) {
		assert.Equal(t, DefaultServerURL, cfg.GetServerURL())

		cfg.SetServerURL("http://frame.local:7007")
		assert.Equal(t, "http://frame.local:7007", cfg.GetServerURL())
	})

	t.Run("DisplayType", func(t *testing.T) {
		// Colour panel is the default
		assert.Equal(t, "RGB320x240", cfg.GetDisplayType())

		cfg.SetDisplayType("ESP32")
		assert.Equal(t, "ESP32", cfg.GetDisplayType())
	})

	t.Run("AspectLock", func(t *testing.T) {
		assert.True(t, cfg.GetAspectLock())

		cfg.SetAspectLock(false)
		assert.False(t, cfg.GetAspectLock())
	})

	t.Run("UploadName", func(t *testing.T) {
		assert.Empty(t, cfg.GetUploadName())

		cfg.SetUploadName("ada")
		assert.Equal(t, "ada", cfg.GetUploadName())
	})

	t.Run("Hotkeys", func(t *testing.T) {
		assert.False(t, cfg.GetHotkeysEnabled())

		cfg.SetHotkeysEnabled(true)
		assert.True(t, cfg.GetHotkeysEnabled())
	})

	t.Run("Reset", func(t *testing.T) {
		cfg.Reset()
		assert.Equal(t, DefaultServerURL, cfg.GetServerURL())
		assert.True(t, cfg.GetAspectLock())
		assert.Empty(t, cfg.GetUploadName())
		assert.False(t, cfg.GetHotkeysEnabled())
	})
}
