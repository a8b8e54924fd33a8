package filedialogcmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ldelacroix/nu_plugin_file_dialog/src/dialog"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/nup"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	result dialog.Result
	err    error
	calls  []dialog.Request
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Show(ctx context.Context, req dialog.Request) (dialog.Result, error) {
	b.calls = append(b.calls, req)
	return b.result, b.err
}

type fakeShell struct {
	dir string
	err error
}

func (e *fakeShell) CurrentDir(ctx context.Context) (string, error) {
	return e.dir, e.err
}

func testCommand(t *testing.T, backend *fakeBackend) (*Command, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/pics", 0755))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(fs, backend, logger), fs
}

func valuePtr(v nup.Value) *nup.Value { return &v }

func flag(name string) nup.NamedFlag { return nup.NamedFlag{Name: name} }

func flagVal(name string, v nup.Value) nup.NamedFlag {
	return nup.NamedFlag{Name: name, Value: valuePtr(v)}
}

func call(named ...nup.NamedFlag) *nup.EvaluatedCall {
	return &nup.EvaluatedCall{Head: nup.Span{Start: 1, End: 12}, Named: named}
}

// dateValue decodes a Date the way it arrives off the wire. The engine has
// value types this plugin has no typed form for; they must still reach the
// flag validators instead of failing the message decode.
func dateValue(t *testing.T) nup.Value {
	t.Helper()
	var v nup.Value
	require.NoError(t, json.Unmarshal([]byte(`{"Date":{"val":"2026-08-30T00:00:00Z","span":{"start":0,"end":0}}}`), &v))
	return v
}

func TestRunResults(t *testing.T) {
	span := nup.Span{}
	baseDir := flagVal("base-dir", nup.NewString("/pics", span))

	tests := []struct {
		name      string
		named     []nup.NamedFlag
		result    dialog.Result
		wantMode  dialog.Mode
		wantList  []string // nil means expect a string result
		wantStr   string
	}{
		{
			name:     "single selection",
			named:    []nup.NamedFlag{baseDir},
			result:   dialog.Result{Paths: []string{"/pics/a.png"}},
			wantMode: dialog.ModeOpenFile,
			wantStr:  "/pics/a.png",
		},
		{
			name:     "cancel is empty string not error",
			named:    []nup.NamedFlag{baseDir},
			result:   dialog.Result{Cancelled: true},
			wantMode: dialog.ModeOpenFile,
			wantStr:  "",
		},
		{
			name:     "multiple with one selection is still a list",
			named:    []nup.NamedFlag{baseDir, flag("multiple")},
			result:   dialog.Result{Paths: []string{"/pics/a.png"}},
			wantMode: dialog.ModeOpenMany,
			wantList: []string{"/pics/a.png"},
		},
		{
			name:     "multiple preserves selection order",
			named:    []nup.NamedFlag{baseDir, flag("multiple")},
			result:   dialog.Result{Paths: []string{"/pics/b.png", "/pics/a.png"}},
			wantMode: dialog.ModeOpenMany,
			wantList: []string{"/pics/b.png", "/pics/a.png"},
		},
		{
			name:     "multiple cancelled is an empty list",
			named:    []nup.NamedFlag{baseDir, flag("multiple")},
			result:   dialog.Result{Cancelled: true},
			wantMode: dialog.ModeOpenMany,
			wantList: []string{},
		},
		{
			name:     "dir-only picks a directory",
			named:    []nup.NamedFlag{baseDir, flag("dir-only")},
			result:   dialog.Result{Paths: []string{"/pics"}},
			wantMode: dialog.ModePickDir,
			wantStr:  "/pics",
		},
		{
			name:     "save uses the save dialog",
			named:    []nup.NamedFlag{baseDir, flag("save")},
			result:   dialog.Result{Paths: []string{"/pics/out.txt"}},
			wantMode: dialog.ModeSaveFile,
			wantStr:  "/pics/out.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{result: tt.result}
			cmd, _ := testCommand(t, backend)

			got, err := cmd.Run(context.Background(), &fakeShell{}, call(tt.named...))
			require.NoError(t, err)

			require.Len(t, backend.calls, 1)
			assert.Equal(t, tt.wantMode, backend.calls[0].Mode)

			if tt.wantList != nil {
				vals, ok := got.AsList()
				require.True(t, ok, "expected a list result")
				paths := make([]string, 0, len(vals))
				for _, v := range vals {
					s, isStr := v.AsString()
					require.True(t, isStr)
					paths = append(paths, s)
				}
				assert.Equal(t, tt.wantList, paths)
			} else {
				s, ok := got.AsString()
				require.True(t, ok, "expected a string result")
				assert.Equal(t, tt.wantStr, s)
			}
		})
	}
}

func TestRunFlagConflicts(t *testing.T) {
	span := nup.Span{}
	baseDir := flagVal("base-dir", nup.NewString("/pics", span))

	tests := []struct {
		name    string
		named   []nup.NamedFlag
		wantMsg string
	}{
		{"multiple and dir-only", []nup.NamedFlag{baseDir, flag("multiple"), flag("dir-only")}, "Cannot select multiple directories"},
		{"save and multiple", []nup.NamedFlag{baseDir, flag("save"), flag("multiple")}, "Cannot save to multiple files"},
		{"save and dir-only", []nup.NamedFlag{baseDir, flag("save"), flag("dir-only")}, "Cannot save to a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			cmd, _ := testCommand(t, backend)

			_, err := cmd.Run(context.Background(), &fakeShell{}, call(tt.named...))
			require.Error(t, err)
			le := nup.AsLabeledError(err)
			assert.Equal(t, tt.wantMsg, le.Msg)
			assert.Empty(t, backend.calls, "conflicting flags must not open a dialog")
		})
	}
}

func TestRunBaseDirValidation(t *testing.T) {
	span := nup.Span{}

	tests := []struct {
		name  string
		named []nup.NamedFlag
	}{
		{"missing directory", []nup.NamedFlag{flagVal("base-dir", nup.NewString("/nope", span))}},
		{"file not dir", []nup.NamedFlag{flagVal("base-dir", nup.NewString("/pics/a.png", span))}},
		{"wrong type", []nup.NamedFlag{flagVal("base-dir", nup.NewInt(7, span))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			cmd, fs := testCommand(t, backend)
			require.NoError(t, afero.WriteFile(fs, "/pics/a.png", []byte("x"), 0644))

			_, err := cmd.Run(context.Background(), &fakeShell{}, call(tt.named...))
			require.Error(t, err)
			assert.Equal(t, "dir has an incorrect type/path", nup.AsLabeledError(err).Msg)
		})
	}
}

func TestRunBaseDirDefaultsToCurrentDir(t *testing.T) {
	backend := &fakeBackend{result: dialog.Result{Paths: []string{"/work/x"}}}
	cmd, _ := testCommand(t, backend)

	_, err := cmd.Run(context.Background(), &fakeShell{dir: "/work"}, call())
	require.NoError(t, err)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, "/work", backend.calls[0].Location)
}

func TestRunSaveWithSuggestedName(t *testing.T) {
	span := nup.Span{}
	backend := &fakeBackend{result: dialog.Result{Paths: []string{"/pics/report.csv"}}}
	cmd, _ := testCommand(t, backend)

	_, err := cmd.Run(context.Background(), &fakeShell{}, call(
		flagVal("base-dir", nup.NewString("/pics", span)),
		flag("save"),
		flagVal("name", nup.NewString("report.csv", span)),
	))
	require.NoError(t, err)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, dialog.ModeSaveFile, backend.calls[0].Mode)
	assert.Equal(t, "report.csv", backend.calls[0].Filename)
}

func TestRunCurrentDirFailure(t *testing.T) {
	backend := &fakeBackend{}
	cmd, _ := testCommand(t, backend)

	shell := &fakeShell{err: errors.New("engine gone")}
	_, err := cmd.Run(context.Background(), shell, call())
	require.Error(t, err)
	assert.Equal(t, "could not determine the current directory", nup.AsLabeledError(err).Msg)
}

func TestRunTitleAndFilters(t *testing.T) {
	span := nup.Span{}
	baseDir := flagVal("base-dir", nup.NewString("/pics", span))

	filter := nup.NewRecord(map[string]nup.Value{
		"Weird":  nup.NewList([]nup.Value{nup.NewString("webp", span)}, span),
		"Normal": nup.NewList([]nup.Value{nup.NewString("png", span), nup.NewString("jpg", span)}, span),
	}, span)

	backend := &fakeBackend{result: dialog.Result{Paths: []string{"/pics/a.png"}}}
	cmd, _ := testCommand(t, backend)

	_, err := cmd.Run(context.Background(), &fakeShell{}, call(
		baseDir,
		flagVal("title", nup.NewString("Pick an image", span)),
		flagVal("filter", filter),
	))
	require.NoError(t, err)

	require.Len(t, backend.calls, 1)
	req := backend.calls[0]
	assert.Equal(t, "Pick an image", req.Title)
	// Labels come out sorted so the dialog's filter order is stable.
	require.Len(t, req.Filters, 2)
	assert.Equal(t, dialog.Filter{Label: "Normal", Extensions: []string{"png", "jpg"}}, req.Filters[0])
	assert.Equal(t, dialog.Filter{Label: "Weird", Extensions: []string{"webp"}}, req.Filters[1])
}

func TestRunBadFlagTypes(t *testing.T) {
	span := nup.Span{}
	baseDir := flagVal("base-dir", nup.NewString("/pics", span))

	tests := []struct {
		name    string
		named   []nup.NamedFlag
		wantMsg string
	}{
		{
			"title not a string",
			[]nup.NamedFlag{baseDir, flagVal("title", nup.NewInt(1, span))},
			"title has an incorrect type",
		},
		{
			"title is a date",
			[]nup.NamedFlag{baseDir, flagVal("title", dateValue(t))},
			"title has an incorrect type",
		},
		{
			"name not a string",
			[]nup.NamedFlag{baseDir, flagVal("name", nup.NewBool(true, span))},
			"name has an incorrect type",
		},
		{
			"filter not a record",
			[]nup.NamedFlag{baseDir, flagVal("filter", nup.NewString("png", span))},
			"filter has an incorrect type",
		},
		{
			"filter value not a list",
			[]nup.NamedFlag{baseDir, flagVal("filter", nup.NewRecord(map[string]nup.Value{
				"Images": nup.NewString("png", span),
			}, span))},
			"filter has an incorrect type",
		},
		{
			"filter extension not a string",
			[]nup.NamedFlag{baseDir, flagVal("filter", nup.NewRecord(map[string]nup.Value{
				"Images": nup.NewList([]nup.Value{nup.NewInt(1, span)}, span),
			}, span))},
			"filter has an incorrect type",
		},
		{
			"filter value is a date",
			[]nup.NamedFlag{baseDir, flagVal("filter", nup.NewRecord(map[string]nup.Value{
				"Images": dateValue(t),
			}, span))},
			"filter has an incorrect type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			cmd, _ := testCommand(t, backend)

			_, err := cmd.Run(context.Background(), &fakeShell{}, call(tt.named...))
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, nup.AsLabeledError(err).Msg)
			assert.Empty(t, backend.calls)
		})
	}
}

func TestRunBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("no display")}
	cmd, _ := testCommand(t, backend)

	span := nup.Span{}
	_, err := cmd.Run(context.Background(), &fakeShell{}, call(
		flagVal("base-dir", nup.NewString("/pics", span)),
	))
	require.Error(t, err)
	le := nup.AsLabeledError(err)
	assert.Equal(t, "failed to show dialog", le.Msg)
	require.Len(t, le.Labels, 1)
	assert.Contains(t, le.Labels[0].Text, "no display")
}

func TestSignatureShape(t *testing.T) {
	cmd, _ := testCommand(t, &fakeBackend{})
	sig := cmd.Signature()

	assert.Equal(t, Name, sig.Sig.Name)
	assert.Len(t, sig.Sig.Named, 7)
	assert.NotEmpty(t, sig.Examples)

	longs := make([]string, 0, len(sig.Sig.Named))
	for _, f := range sig.Sig.Named {
		longs = append(longs, f.Long)
	}
	assert.Equal(t, []string{"multiple", "dir-only", "save", "base-dir", "title", "name", "filter"}, longs)
}
