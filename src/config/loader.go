package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// Environment override names.
const (
	EnvBackend  = "NU_PLUGIN_FILE_DIALOG_BACKEND"
	EnvLogLevel = "NU_PLUGIN_FILE_DIALOG_LOG_LEVEL"
	EnvLogFile  = "NU_PLUGIN_FILE_DIALOG_LOG_FILE"
)

// Loader reads the config file and applies environment overrides.
type Loader struct {
	fs       afero.Fs
	validate *validator.Validate
}

// NewLoader creates a loader over the given filesystem; production code
// passes afero.NewOsFs().
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs:       fs,
		validate: validator.New(),
	}
}

// Load reads the config at path (empty means the default location), merges
// environment overrides, and validates. A missing file is not an error;
// a malformed or invalid one is.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := afero.ReadFile(l.fs, path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	l.applyEnv(cfg)

	if err := l.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
}
