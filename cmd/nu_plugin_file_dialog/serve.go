package main

import (
	"context"
	"fmt"

	"github.com/ldelacroix/nu_plugin_file_dialog/src/config"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/dialog"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/filedialogcmd"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/nup"
	"github.com/spf13/afero"
)

// ServeCmd answers the engine over stdio until it disconnects.
type ServeCmd struct{}

func (s *ServeCmd) Run(cli *CLI) error {
	if !cli.Stdio {
		return fmt.Errorf("this binary is a Nushell plugin; register it with `plugin add %s` and run `file-dialog` from the shell", "nu_plugin_file_dialog")
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createServeLogger(cfg)

	backend, err := dialog.Select(cfg.Backend)
	if err != nil {
		return err
	}

	plugin := nup.NewPlugin(Version, logger)
	plugin.AddCommand(filedialogcmd.New(afero.NewOsFs(), backend, logger))

	logger.Info("serving plugin", "version", Version, "backend", backend.Name())
	return plugin.Serve(context.Background(), nup.NewStdioTransport(logger))
}

// loadConfig reads the config file and applies CLI overrides.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.NewLoader(afero.NewOsFs()).Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	return cfg, nil
}
