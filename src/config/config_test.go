package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader(afero.NewMemMapFs())

	cfg, err := loader.Load("/nowhere/config.json")
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name:    "full config",
			content: `{"backend":"zenity","log_level":"debug","log_file":"/tmp/p.log"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "zenity", cfg.Backend)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "/tmp/p.log", cfg.LogFile)
			},
		},
		{
			name:    "partial config keeps defaults",
			content: `{"backend":"native"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "native", cfg.Backend)
				assert.Equal(t, "warn", cfg.LogLevel)
			},
		},
		{
			name:    "unknown backend rejected",
			content: `{"backend":"kdialog"}`,
			wantErr: true,
		},
		{
			name:    "unknown log level rejected",
			content: `{"log_level":"trace"}`,
			wantErr: true,
		},
		{
			name:    "malformed json rejected",
			content: `{"backend":`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/etc/fd/config.json", []byte(tt.content), 0644))

			cfg, err := NewLoader(fs).Load("/etc/fd/config.json")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/fd/config.json", []byte(`{"backend":"native"}`), 0644))

	t.Setenv(EnvBackend, "zenity")
	t.Setenv(EnvLogLevel, "info")

	cfg, err := NewLoader(fs).Load("/etc/fd/config.json")
	require.NoError(t, err)
	assert.Equal(t, "zenity", cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverrideIsValidated(t *testing.T) {
	t.Setenv(EnvBackend, "carrier-pigeon")

	_, err := NewLoader(afero.NewMemMapFs()).Load("/nowhere/config.json")
	require.Error(t, err)
}
