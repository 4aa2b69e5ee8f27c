// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the secret holding the text-generation service credential.
const APIKeyEnv = "GEMINI_API_KEY"

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	// EnvPath is the .env file that was loaded, empty when none was found.
	EnvPath string
	// APIKey is the credential at load time. It may be empty; a missing
	// credential is reported per command, not at startup.
	APIKey string
	// APIKeyFromEnv is true when the credential came from the process
	// environment rather than a .env file.
	APIKeyFromEnv bool

	SettingsPath   string
	GeminiModel    string
	GeminiEndpoint string
	SessionStore   string
	LogLevel       string
	LogPath        string
	RequestTimeout time.Duration
	DesktopAlerts  bool
}

// Default values
const (
	defaultGeminiModel    = "gemini-pro"
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	defaultRequestTimeout = 60 * time.Second
	defaultLogLevel       = "info"
)

// Load reads configuration from .env files, the optional settings file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	_, keyFromEnv := os.LookupEnv(APIKeyEnv)

	// Try loading .env from multiple locations
	var envPath string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			envPath = path
			break
		}
	}

	settingsPath := getEnvString("SETTINGS_PATH", getDefaultSettingsPath())
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := &Config{
		EnvPath:        envPath,
		APIKey:         strings.TrimSpace(os.Getenv(APIKeyEnv)),
		APIKeyFromEnv:  keyFromEnv,
		SettingsPath:   settingsPath,
		GeminiModel:    getEnvString("GEMINI_MODEL", orDefault(settings.Model, defaultGeminiModel)),
		GeminiEndpoint: getEnvString("GEMINI_ENDPOINT", orDefault(settings.Endpoint, defaultGeminiEndpoint)),
		SessionStore:   strings.ToLower(getEnvString("SESSION_STORE", orDefault(settings.SessionStore, StoreMemory))),
		LogLevel:       getEnvString("LOG_LEVEL", orDefault(settings.LogLevel, defaultLogLevel)),
		LogPath:        getEnvString("LOG_PATH", orDefault(settings.LogPath, getDefaultLogPath())),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", settings.requestTimeout(defaultRequestTimeout)),
		DesktopAlerts:  getEnvBool("DESKTOP_ALERTS", settings.desktopAlerts(true)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that cannot be defaulted at use time.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.SessionStore)
	}
	if c.GeminiEndpoint == "" {
		return fmt.Errorf("GEMINI_ENDPOINT must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "smart-anesthesia")
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	cwd, cwdErr := os.Getwd()
	if cwdErr == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if _, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(ConfigDir(), ".env"))
	}

	// Parent directories (useful for development)
	if cwdErr == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultSettingsPath returns the default path for the YAML settings file.
func getDefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.yaml")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	return filepath.Join(ConfigDir(), "sat.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
