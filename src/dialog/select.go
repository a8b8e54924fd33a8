package dialog

import (
	"context"
	"errors"
	"fmt"
)

// Select returns the backend for a configured name: "native", "zenity", or
// "auto". Auto prefers the platform chooser and falls back to zenity for
// requests the platform chooser cannot serve (multi-select on Windows and
// macOS).
func Select(name string) (Backend, error) {
	switch name {
	case "native":
		return NewNativeBackend(), nil
	case "zenity":
		return ZenityBackend{}, nil
	case "", "auto":
		return autoBackend{primary: NewNativeBackend(), fallback: ZenityBackend{}}, nil
	default:
		return nil, fmt.Errorf("unknown dialog backend %q", name)
	}
}

type autoBackend struct {
	primary  Backend
	fallback Backend
}

func (b autoBackend) Name() string { return "auto" }

func (b autoBackend) Show(ctx context.Context, req Request) (Result, error) {
	res, err := b.primary.Show(ctx, req)
	if errors.Is(err, ErrUnsupported) {
		return b.fallback.Show(ctx, req)
	}
	return res, err
}
