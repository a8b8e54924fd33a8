//go:build !linux

package dialog

import (
	"context"
	"errors"
	"fmt"

	sqdialog "github.com/sqweek/dialog"
)

// NativeBackend talks straight to the platform file chooser via
// sqweek/dialog on Windows and macOS. sqweek has no multi-select, so
// ModeOpenMany reports ErrUnsupported and the caller falls back to zenity.
type NativeBackend struct{}

// NewNativeBackend returns the platform chooser where one exists. On linux
// (see backend_native_linux.go) it returns the zenity backend instead.
func NewNativeBackend() Backend { return NativeBackend{} }

func (NativeBackend) Name() string { return "native" }

func (NativeBackend) Show(ctx context.Context, req Request) (Result, error) {
	// sqweek blocks with no cancellation hook, so honor an already
	// cancelled context and otherwise let the dialog run.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if req.Mode == ModePickDir {
		b := sqdialog.Directory()
		if req.Title != "" {
			b = b.Title(req.Title)
		}
		if req.Location != "" {
			b = b.SetStartDir(req.Location)
		}
		path, err := b.Browse()
		return nativeResult(path, err)
	}

	b := sqdialog.File()
	if req.Title != "" {
		b = b.Title(req.Title)
	}
	if req.Location != "" {
		b = b.SetStartDir(req.Location)
	}
	for _, f := range req.Filters {
		b = b.Filter(f.Label, f.Extensions...)
	}

	switch req.Mode {
	case ModeOpenFile:
		path, err := b.Load()
		return nativeResult(path, err)
	case ModeSaveFile:
		path, err := b.Save()
		return nativeResult(path, err)
	case ModeOpenMany:
		return Result{}, ErrUnsupported
	default:
		return Result{}, fmt.Errorf("unknown dialog mode %v", req.Mode)
	}
}

func nativeResult(path string, err error) (Result, error) {
	if errors.Is(err, sqdialog.ErrCancelled) {
		return Result{Cancelled: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("native dialog failed: %w", err)
	}
	return Result{Paths: []string{path}}, nil
}
