package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the non-secret options read from the YAML settings file.
// The credential is never read from here.
type Settings struct {
	Model          string `yaml:"model"`
	Endpoint       string `yaml:"endpoint"`
	SessionStore   string `yaml:"session_store"`
	LogLevel       string `yaml:"log_level"`
	LogPath        string `yaml:"log_path"`
	RequestTimeout string `yaml:"request_timeout"`
	DesktopAlerts  *bool  `yaml:"desktop_alerts"`
}

// LoadSettings reads the settings file at path. A missing file yields
// zero Settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from SETTINGS_PATH
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) requestTimeout(def time.Duration) time.Duration {
	if s.RequestTimeout == "" {
		return def
	}
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func (s Settings) desktopAlerts(def bool) bool {
	if s.DesktopAlerts == nil {
		return def
	}
	return *s.DesktopAlerts
}
