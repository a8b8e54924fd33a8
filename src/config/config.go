package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "nu_plugin_file_dialog"

// Config is the plugin's configuration. Everything has a sane default; the
// file and environment only override.
type Config struct {
	// Backend picks the dialog implementation: the platform chooser,
	// zenity, or automatic fallback.
	Backend string `json:"backend" validate:"oneof=auto native zenity"`

	// LogLevel controls slog filtering.
	LogLevel string `json:"log_level" validate:"oneof=debug info warn error"`

	// LogFile receives serve-mode logs. Stdout belongs to the plugin
	// protocol, so logs go to a file; empty means the default under the
	// XDG state dir.
	LogFile string `json:"log_file,omitempty"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides exist.
func DefaultConfig() *Config {
	return &Config{
		Backend:  "auto",
		LogLevel: "warn",
		LogFile:  DefaultLogPath(),
	}
}

// DefaultConfigPath returns the config file location under XDG config home.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.json")
}

// DefaultLogPath returns the serve-mode log location under XDG state home.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, "plugin.log")
}
