package dialog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ncruces/zenity"
)

// ZenityBackend shows dialogs through ncruces/zenity, which talks to the
// native toolkit on Windows and macOS and shells out to the zenity binary
// elsewhere. It is the only backend that supports multi-select, so "auto"
// keeps it around even when the sqweek backend is preferred.
type ZenityBackend struct{}

func (ZenityBackend) Name() string { return "zenity" }

func (ZenityBackend) Show(ctx context.Context, req Request) (Result, error) {
	opts := []zenity.Option{zenity.Context(ctx)}
	if req.Title != "" {
		opts = append(opts, zenity.Title(req.Title))
	}
	if loc := startLocation(req); loc != "" {
		opts = append(opts, zenity.Filename(loc))
	}
	if len(req.Filters) > 0 && req.Mode != ModePickDir {
		filters := make(zenity.FileFilters, 0, len(req.Filters))
		for _, f := range req.Filters {
			patterns := make([]string, 0, len(f.Extensions))
			for _, ext := range f.Extensions {
				patterns = append(patterns, "*."+ext)
			}
			filters = append(filters, zenity.FileFilter{
				Name:     f.Label,
				Patterns: patterns,
				CaseFold: true,
			})
		}
		opts = append(opts, filters)
	}

	switch req.Mode {
	case ModeOpenFile:
		path, err := zenity.SelectFile(opts...)
		return singleResult(path, err)
	case ModeOpenMany:
		paths, err := zenity.SelectFileMultiple(opts...)
		if errors.Is(err, zenity.ErrCanceled) {
			return Result{Cancelled: true}, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("zenity multi-select failed: %w", err)
		}
		return Result{Paths: paths}, nil
	case ModePickDir:
		opts = append(opts, zenity.Directory())
		path, err := zenity.SelectFile(opts...)
		return singleResult(path, err)
	case ModeSaveFile:
		opts = append(opts, zenity.ConfirmOverwrite())
		path, err := zenity.SelectFileSave(opts...)
		return singleResult(path, err)
	default:
		return Result{}, fmt.Errorf("unknown dialog mode %v", req.Mode)
	}
}

func singleResult(path string, err error) (Result, error) {
	if errors.Is(err, zenity.ErrCanceled) {
		return Result{Cancelled: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("zenity dialog failed: %w", err)
	}
	return Result{Paths: []string{path}}, nil
}

// startLocation turns the request's location and suggested filename into
// the single path zenity takes. A trailing separator makes zenity treat it
// as a directory.
func startLocation(req Request) string {
	switch {
	case req.Location != "" && req.Filename != "":
		return filepath.Join(req.Location, req.Filename)
	case req.Location != "":
		return req.Location + string(filepath.Separator)
	case req.Filename != "":
		return req.Filename
	default:
		return ""
	}
}
