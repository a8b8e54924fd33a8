package filedialogcmd

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/dialog"
	"github.com/ldelacroix/nu_plugin_file_dialog/src/nup"
	"github.com/spf13/afero"
)

// Name is the command name registered with the shell.
const Name = "file-dialog"

const description = "Select file(s) using the native dialog"

// Command implements the file-dialog plugin command: translate flags into a
// dialog request, show the native dialog, hand the chosen path(s) back as
// shell values.
type Command struct {
	fs      afero.Fs
	backend dialog.Backend
	logger  *slog.Logger
}

// New creates the command. The filesystem is only consulted to validate
// --base-dir; tests pass an in-memory one.
func New(fs afero.Fs, backend dialog.Backend, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{fs: fs, backend: backend, logger: logger}
}

// Signature declares the command surface: all flags, no positionals, no
// pipeline input.
func (c *Command) Signature() nup.PluginSignature {
	sig := nup.BuildSignature(Name, description)
	sig.Switch("multiple", "m", "Select multiple values")
	sig.Switch("dir-only", "d", "Select a directory instead of files")
	sig.Switch("save", "s", "Choose a path to save to instead of opening")
	sig.NamedFlag("base-dir", "b", nup.ShapeDirectory, "Base dir to search")
	sig.NamedFlag("title", "t", nup.ShapeString, "Window title")
	sig.NamedFlag("name", "n", nup.ShapeString, "Suggested file name, used by save dialogs")
	sig.NamedFlag("filter", "f", nup.ShapeRecord, "Filters to use")
	sig.InputOutput(nup.TypeNothing, nup.TypeString)
	sig.InputOutput(nup.TypeNothing, nup.TypeListString)

	return nup.PluginSignature{
		Sig: *sig,
		Examples: []nup.Example{
			{
				Example:     "file-dialog -m -b ~/Images -f {Normal: [png, jpg], Weird: [webp]}",
				Description: "Select multiple images in the ~/Images folder",
			},
			{
				Example:     "file-dialog -s -t 'Save report as'",
				Description: "Pick a destination path with a save dialog",
			},
		},
	}
}

// Run shows the dialog and converts the outcome. Cancellation is an empty
// result, never an error.
func (c *Command) Run(ctx context.Context, engine nup.Engine, call *nup.EvaluatedCall) (nup.Value, error) {
	logger := c.logger.With("request", uuid.NewString())

	req, multiple, err := c.buildRequest(ctx, engine, call)
	if err != nil {
		return nup.Value{}, err
	}

	logger.Info("showing dialog",
		"mode", req.Mode.String(),
		"backend", c.backend.Name(),
		"baseDir", req.Location,
		"filters", len(req.Filters))

	res, err := c.backend.Show(ctx, *req)
	if err != nil {
		logger.Error("dialog failed", "error", err)
		return nup.Value{}, nup.NewLabeledError("failed to show dialog").
			WithLabel(err.Error(), call.Head)
	}

	logger.Info("dialog finished", "cancelled", res.Cancelled, "selected", len(res.Paths))
	return convertResult(res, multiple, call.Head), nil
}

// buildRequest validates the flags and assembles the dialog request. All
// failures are usage errors labeled at the call site.
func (c *Command) buildRequest(ctx context.Context, engine nup.Engine, call *nup.EvaluatedCall) (*dialog.Request, bool, error) {
	multiple := call.HasFlag("multiple")
	dirOnly := call.HasFlag("dir-only")
	save := call.HasFlag("save")

	switch {
	case multiple && dirOnly:
		return nil, false, nup.NewLabeledError("Cannot select multiple directories").
			WithLabel("Only one of `--multiple` or `--dir-only` can be used", call.Head)
	case save && multiple:
		return nil, false, nup.NewLabeledError("Cannot save to multiple files").
			WithLabel("Only one of `--save` or `--multiple` can be used", call.Head)
	case save && dirOnly:
		return nil, false, nup.NewLabeledError("Cannot save to a directory").
			WithLabel("Only one of `--save` or `--dir-only` can be used", call.Head)
	}

	title, _, err := call.StringFlag("title")
	if err != nil {
		return nil, false, nup.NewLabeledError("title has an incorrect type").
			WithLabel("title has to be a string", call.Head)
	}

	name, _, err := call.StringFlag("name")
	if err != nil {
		return nil, false, nup.NewLabeledError("name has an incorrect type").
			WithLabel("name has to be a string", call.Head)
	}

	baseDir, err := c.resolveBaseDir(ctx, engine, call)
	if err != nil {
		return nil, false, err
	}

	filters, err := parseFilters(call)
	if err != nil {
		return nil, false, err
	}

	mode := dialog.ModeOpenFile
	switch {
	case dirOnly:
		mode = dialog.ModePickDir
	case save:
		mode = dialog.ModeSaveFile
	case multiple:
		mode = dialog.ModeOpenMany
	}

	return &dialog.Request{
		Title:    title,
		Location: baseDir,
		Filename: name,
		Filters:  filters,
		Mode:     mode,
	}, multiple, nil
}

// resolveBaseDir returns the --base-dir flag when it names an existing
// directory, or asks the engine for the shell's current directory when the
// flag is absent.
func (c *Command) resolveBaseDir(ctx context.Context, engine nup.Engine, call *nup.EvaluatedCall) (string, error) {
	v := call.FlagValue("base-dir")
	if v == nil {
		dir, err := engine.CurrentDir(ctx)
		if err != nil {
			return "", nup.NewLabeledError("could not determine the current directory").
				WithLabel(err.Error(), call.Head)
		}
		return dir, nil
	}

	dirErr := nup.NewLabeledError("dir has an incorrect type/path").
		WithLabel("dir has to be a directory", call.Head)

	path, ok := v.AsString()
	if !ok {
		return "", dirErr
	}
	isDir, err := afero.DirExists(c.fs, path)
	if err != nil || !isDir {
		return "", dirErr
	}
	return path, nil
}

// parseFilters converts the --filter record into dialog filters. The record
// maps labels to lists of extensions; anything else is a usage error.
// Labels are sorted so the dialog's filter order is stable.
func parseFilters(call *nup.EvaluatedCall) ([]dialog.Filter, error) {
	filterErr := nup.NewLabeledError("filter has an incorrect type").
		WithLabel("filter has to be a record of List(String)", call.Head)

	rec, ok, err := call.RecordFlag("filter")
	if err != nil {
		return nil, filterErr
	}
	if !ok {
		return nil, nil
	}

	labels := make([]string, 0, len(rec))
	for label := range rec {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	filters := make([]dialog.Filter, 0, len(labels))
	for _, label := range labels {
		vals, isList := rec[label].AsList()
		if !isList {
			return nil, filterErr
		}
		exts := make([]string, 0, len(vals))
		for _, v := range vals {
			ext, isStr := v.AsString()
			if !isStr {
				return nil, filterErr
			}
			exts = append(exts, ext)
		}
		filters = append(filters, dialog.Filter{Label: label, Extensions: exts})
	}
	return filters, nil
}

// convertResult encodes the dialog outcome for the shell: a list when
// --multiple was given (even for a single selection), a string otherwise,
// and empty values on cancellation.
func convertResult(res dialog.Result, multiple bool, span nup.Span) nup.Value {
	if multiple {
		vals := make([]nup.Value, 0, len(res.Paths))
		if !res.Cancelled {
			for _, p := range res.Paths {
				vals = append(vals, nup.NewString(p, span))
			}
		}
		return nup.NewList(vals, span)
	}
	if res.Cancelled || len(res.Paths) == 0 {
		return nup.NewString("", span)
	}
	return nup.NewString(res.Paths[0], span)
}
