package dialog

import (
	"context"
	"errors"
	"fmt"
)

// Mode selects which native dialog to show.
type Mode int

const (
	// ModeOpenFile asks for one existing file.
	ModeOpenFile Mode = iota
	// ModeOpenMany asks for one or more existing files.
	ModeOpenMany
	// ModePickDir asks for an existing directory.
	ModePickDir
	// ModeSaveFile asks for a (possibly new) file to write to.
	ModeSaveFile
)

func (m Mode) String() string {
	switch m {
	case ModeOpenFile:
		return "open-file"
	case ModeOpenMany:
		return "open-many"
	case ModePickDir:
		return "pick-dir"
	case ModeSaveFile:
		return "save-file"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Filter narrows the selectable files to a labelled set of extensions,
// e.g. {"Images", ["png", "jpg"]}. Extensions are bare, without dot or glob.
type Filter struct {
	Label      string
	Extensions []string
}

// Request describes one dialog to show. It lives for a single call: built
// from command flags, consumed by a backend, gone.
type Request struct {
	Title    string
	Location string // starting directory
	Filename string // suggested name, save mode only
	Filters  []Filter
	Mode     Mode
}

// Result is what came back from the user. Cancelled results carry no paths
// and are not errors.
type Result struct {
	Paths     []string
	Cancelled bool
}

// ErrUnsupported is returned by backends that cannot serve a request's
// mode; callers are expected to fall back to another backend.
var ErrUnsupported = errors.New("dialog mode not supported by this backend")

// Backend shows native dialogs. Show blocks until the user chooses or
// dismisses; on at least macOS the call must happen on the main thread.
type Backend interface {
	// Name identifies the backend in logs and in `doctor` output.
	Name() string

	// Show displays the dialog for the request.
	Show(ctx context.Context, req Request) (Result, error)
}
