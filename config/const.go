package config

import (
	"strings"
	"time"
)

// AppVersion is the version of the service.
var AppVersion = "0.4.0" // Overridden with -ldflags at release time

// AppName is the name of the service.
const AppName = "Glint"

// StudioAppID is the fyne application ID of the desktop studio.
const StudioAppID = "com.dixieflatline76.glint.studio"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// Environment keys read by Load.
const (
	EnvListenAddress   = "LISTEN_ADDRESS"
	EnvPort            = "PORT"
	EnvDataDir         = "DATA_DIR"
	EnvSiteDir         = "SITE_DIR"
	EnvESPEndpoint     = "ESP_ENDPOINT"
	EnvESPRGBEndpoint  = "ESP_RGB_ENDPOINT"
	EnvFaceCascadePath = "FACE_CASCADE_PATH"
	EnvUpdateCheck     = "UPDATE_CHECK"
)

// Defaults
const (
	DefaultListenAddress = "0.0.0.0"
	DefaultPort          = 7007
	DefaultSiteDir       = "site/build"
	DefaultServerURL     = "http://localhost:7007"

	// DeviceTimeout bounds a single push to the display hardware.
	DeviceTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout = 5 * time.Second
)

// Data file names inside DataDir.
const (
	UploadsFile  = "uploads.json"
	SettingsFile = "settings.json"
)
