package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ldelacroix/nu_plugin_file_dialog/src/dialog"
)

// PickCmd runs the dialog straight from a terminal. Same flags as the
// plugin command, useful for trying out backends without registering the
// plugin in Nushell.
type PickCmd struct {
	Multiple bool     `short:"m" help:"Select multiple files"`
	DirOnly  bool     `short:"d" help:"Select a directory instead of files"`
	Save     bool     `short:"s" help:"Choose a path to save to instead of opening"`
	BaseDir  string   `short:"b" type:"existingdir" help:"Base dir to search"`
	Title    string   `short:"t" help:"Window title"`
	Name     string   `short:"n" help:"Suggested file name for save dialogs"`
	Filter   []string `short:"f" help:"Filter as label:ext,ext - repeatable (e.g. -f Images:png,jpg)"`
}

func (p *PickCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createCLILogger(cfg.LogLevel)

	mode, err := p.mode()
	if err != nil {
		return err
	}
	filters, err := parsePickFilters(p.Filter)
	if err != nil {
		return err
	}

	baseDir := p.BaseDir
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
	}

	backend, err := dialog.Select(cfg.Backend)
	if err != nil {
		return err
	}
	logger.Info("showing dialog", "mode", mode.String(), "backend", backend.Name())

	res, err := backend.Show(context.Background(), dialog.Request{
		Title:    p.Title,
		Location: baseDir,
		Filename: p.Name,
		Filters:  filters,
		Mode:     mode,
	})
	if err != nil {
		return err
	}
	if res.Cancelled {
		logger.Info("dialog cancelled")
		return nil
	}
	for _, path := range res.Paths {
		fmt.Println(path)
	}
	return nil
}

func (p *PickCmd) mode() (dialog.Mode, error) {
	switch {
	case p.Multiple && p.DirOnly:
		return 0, fmt.Errorf("only one of --multiple or --dir-only can be used")
	case p.Save && p.Multiple:
		return 0, fmt.Errorf("only one of --save or --multiple can be used")
	case p.Save && p.DirOnly:
		return 0, fmt.Errorf("only one of --save or --dir-only can be used")
	case p.DirOnly:
		return dialog.ModePickDir, nil
	case p.Save:
		return dialog.ModeSaveFile, nil
	case p.Multiple:
		return dialog.ModeOpenMany, nil
	default:
		return dialog.ModeOpenFile, nil
	}
}

// parsePickFilters parses repeated label:ext,ext flags into dialog filters.
func parsePickFilters(raw []string) ([]dialog.Filter, error) {
	filters := make([]dialog.Filter, 0, len(raw))
	for _, spec := range raw {
		label, exts, ok := strings.Cut(spec, ":")
		if !ok || label == "" || exts == "" {
			return nil, fmt.Errorf("malformed filter %q, expected label:ext,ext", spec)
		}
		split := strings.Split(exts, ",")
		cleaned := make([]string, 0, len(split))
		for _, ext := range split {
			ext = strings.TrimSpace(strings.TrimPrefix(ext, "."))
			if ext == "" {
				return nil, fmt.Errorf("malformed filter %q, empty extension", spec)
			}
			cleaned = append(cleaned, ext)
		}
		filters = append(filters, dialog.Filter{Label: label, Extensions: cleaned})
	}
	return filters, nil
}
