// Package config provides configuration management for the Glint server.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config struct to hold all server configuration data
type Config struct {
	ListenAddress   string `json:"listen_address"`
	Port            int    `json:"port"`
	DataDir         string `json:"data_dir"`
	SiteDir         string `json:"site_dir"`
	ESPEndpoint     string `json:"esp_endpoint"`
	ESPRGBEndpoint  string `json:"esp_rgb_endpoint"`
	FaceCascadePath string `json:"face_cascade_path"`
	UpdateCheck     bool   `json:"update_check"`
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.Port)
}

// UploadsPath returns the path of the persisted gallery.
func (c *Config) UploadsPath() string {
	return filepath.Join(c.DataDir, UploadsFile)
}

// SettingsPath returns the path of the persisted key/value settings.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, SettingsFile)
}

// GetPath returns the path to the user's config directory
func GetPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Error getting user home directory: %v", err)
		return "." + strings.ToLower(AppName)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(AppName))
}

// GetFilename returns the path to the user's config file
func GetFilename() string {
	return filepath.Join(GetPath(), "config.json")
}

// Load builds the configuration: defaults, then the JSON file (if present),
// then environment overrides.
func Load(filename string) (*Config, error) {
	c := &Config{}
	c.setDefaultValues()

	if filename != "" {
		if err := c.loadFromFile(filename); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading config %s: %w", filename, err)
		}
	}

	c.applyEnv()

	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DataDir == "" {
		return nil, fmt.Errorf("data dir is empty")
	}
	return c, nil
}

// loadFromFile loads configuration from the specified file
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

// setDefaultValues sets default values for the configuration
func (c *Config) setDefaultValues() {
	c.ListenAddress = DefaultListenAddress
	c.Port = DefaultPort
	c.DataDir = filepath.Join(GetPath(), "data")
	c.SiteDir = DefaultSiteDir
	c.UpdateCheck = true
}

func (c *Config) applyEnv() {
	c.ListenAddress = GetEnv(EnvListenAddress, c.ListenAddress)
	c.Port = GetEnvTyped(EnvPort, c.Port)
	c.DataDir = GetEnv(EnvDataDir, c.DataDir)
	c.SiteDir = GetEnv(EnvSiteDir, c.SiteDir)
	c.ESPEndpoint = GetEnv(EnvESPEndpoint, c.ESPEndpoint)
	c.ESPRGBEndpoint = GetEnv(EnvESPRGBEndpoint, c.ESPRGBEndpoint)
	c.FaceCascadePath = GetEnv(EnvFaceCascadePath, c.FaceCascadePath)
	c.UpdateCheck = GetEnvTyped(EnvUpdateCheck, c.UpdateCheck)
}

// Save writes the configuration to filename, creating the directory if needed.
func (c *Config) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config data: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetEnv returns the value of key, or def when it is unset or empty.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// GetEnvTyped parses the value of key into T. Unset or unparsable values
// yield def.
func GetEnvTyped[T int | bool | float64 | string](key string, def T) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}

	var out any
	var err error
	switch any(def).(type) {
	case int:
		out, err = strconv.Atoi(raw)
	case bool:
		out, err = strconv.ParseBool(raw)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	case string:
		out = raw
	}
	if err != nil {
		log.Printf("Config: ignoring %s=%q: %v", key, raw, err)
		return def
	}
	return out.(T)
}
