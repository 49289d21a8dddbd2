package shell

import (
	"context"
	"slices"

	"pickfs/internal/adapter"
	"pickfs/internal/handle"
)

// Host serves the native picker contract from the shell's path dialogs, so
// the full-capability adapter can run on top of the shell channel.
type Host struct {
	ch *Channel
}

var (
	_ adapter.NativeHost     = (*Host)(nil)
	_ adapter.HandleResolver = (*Host)(nil)
)

// NewHost wraps ch.
func NewHost(ch *Channel) *Host { return &Host{ch: ch} }

// Channel returns the underlying channel.
func (h *Host) Channel() *Channel { return h.ch }

func (h *Host) ShowOpenFilePicker(ctx context.Context, opts adapter.OpenFilePickerOptions) ([]handle.FileHandle, error) {
	paths, err := h.ch.SelectFiles(ctx, extensions(opts.Types), opts.Multiple)
	if err != nil {
		return nil, err
	}
	out := make([]handle.FileHandle, 0, len(paths))
	for _, p := range paths {
		out = append(out, h.ch.File(p))
	}
	return out, nil
}

func (h *Host) ShowDirectoryPicker(ctx context.Context, _ adapter.DirectoryPickerOptions) (handle.DirectoryHandle, error) {
	p, err := h.ch.SelectDirectory(ctx)
	if err != nil {
		return nil, err
	}
	return h.ch.Directory(p), nil
}

func (h *Host) ShowSaveFilePicker(ctx context.Context, opts adapter.SaveFilePickerOptions) (handle.FileHandle, error) {
	p, err := h.ch.SelectSavePath(ctx, opts.SuggestedName, extensions(opts.Types))
	if err != nil {
		return nil, err
	}
	return h.ch.File(p), nil
}

func (h *Host) Reopen(ctx context.Context, key string, kind handle.Kind) (handle.Entry, error) {
	return h.ch.Reopen(ctx, key, kind)
}

func extensions(types []adapter.AcceptType) []string {
	var out []string
	for _, t := range types {
		for _, exts := range adapter.NormalizeAccept(t.Accept) {
			out = append(out, exts...)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
