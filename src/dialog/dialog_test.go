package dialog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend returns canned results, optionally refusing a mode.
type scriptedBackend struct {
	name        string
	result      Result
	err         error
	unsupported map[Mode]bool
	calls       []Request
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Show(ctx context.Context, req Request) (Result, error) {
	b.calls = append(b.calls, req)
	if b.unsupported[req.Mode] {
		return Result{}, ErrUnsupported
	}
	return b.result, b.err
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		wantName string
		wantErr  bool
	}{
		{"zenity", "zenity", "zenity", false},
		{"auto", "auto", "auto", false},
		{"empty means auto", "", "auto", false},
		{"unknown", "kdialog", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Select(tt.backend)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, b.Name())
		})
	}
}

func TestAutoBackendFallsBack(t *testing.T) {
	primary := &scriptedBackend{
		name:        "primary",
		unsupported: map[Mode]bool{ModeOpenMany: true},
		result:      Result{Paths: []string{"/from/primary"}},
	}
	fallback := &scriptedBackend{
		name:   "fallback",
		result: Result{Paths: []string{"/a", "/b"}},
	}
	auto := autoBackend{primary: primary, fallback: fallback}

	// Supported mode stays on the primary.
	res, err := auto.Show(context.Background(), Request{Mode: ModeOpenFile})
	require.NoError(t, err)
	assert.Equal(t, []string{"/from/primary"}, res.Paths)
	assert.Empty(t, fallback.calls)

	// Unsupported mode falls through.
	res, err = auto.Show(context.Background(), Request{Mode: ModeOpenMany})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, res.Paths)
	require.Len(t, fallback.calls, 1)
	assert.Equal(t, ModeOpenMany, fallback.calls[0].Mode)
}

func TestAutoBackendPropagatesRealErrors(t *testing.T) {
	boom := errors.New("display not available")
	primary := &scriptedBackend{name: "primary", err: boom}
	fallback := &scriptedBackend{name: "fallback"}
	auto := autoBackend{primary: primary, fallback: fallback}

	_, err := auto.Show(context.Background(), Request{Mode: ModeOpenFile})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, fallback.calls)
}

func TestZenityStartLocation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"nothing", Request{}, ""},
		{"dir only gets trailing separator", Request{Location: "/home/me"}, "/home/me" + sep()},
		{"dir and filename join", Request{Location: "/home/me", Filename: "out.txt"}, "/home/me" + sep() + "out.txt"},
		{"filename only", Request{Filename: "out.txt"}, "out.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, startLocation(tt.req))
		})
	}
}

func sep() string { return string(filepath.Separator) }

func TestModeString(t *testing.T) {
	assert.Equal(t, "open-file", ModeOpenFile.String())
	assert.Equal(t, "open-many", ModeOpenMany.String())
	assert.Equal(t, "pick-dir", ModePickDir.String())
	assert.Equal(t, "save-file", ModeSaveFile.String())
}
