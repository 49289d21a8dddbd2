package adapter

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
	"pickfs/internal/logging"
)

// FullAdapter delegates to a host's native handle-based pickers.
type FullAdapter struct {
	host NativeHost
	caps capability.Capabilities
	log  *zap.Logger
}

var _ Adapter = (*FullAdapter)(nil)

// NewFullAdapter creates an adapter over host.
func NewFullAdapter(host NativeHost, caps capability.Capabilities, log *zap.Logger) *FullAdapter {
	return &FullAdapter{host: host, caps: caps, log: logging.OrNop(log).Named("full")}
}

func (a *FullAdapter) Capabilities() capability.Capabilities { return a.caps }

// Host returns the native host, for callers that need HandleResolver.
func (a *FullAdapter) Host() NativeHost { return a.host }

func (a *FullAdapter) PickFiles(ctx context.Context, opts FilePickOptions) handle.PickerResult {
	files, err := a.host.ShowOpenFilePicker(ctx, OpenFilePickerOptions{
		Types:                  AcceptTypes(opts.Accept, opts.Description),
		Multiple:               opts.AllowsMultiple(),
		ExcludeAcceptAllOption: opts.ExcludeAcceptAllOption,
	})
	if err != nil {
		return a.failure("pick_files", err)
	}
	if len(files) == 0 {
		a.log.Debug("file picker returned nothing")
		return handle.CancelledResult()
	}
	entries := make([]handle.Entry, len(files))
	for i, f := range files {
		entries[i] = f
	}
	a.log.Debug("files picked", zap.Int("count", len(entries)))
	return handle.NativeResult(entries...)
}

func (a *FullAdapter) PickDirectory(ctx context.Context, opts DirectoryPickOptions) handle.PickerResult {
	dir, err := a.host.ShowDirectoryPicker(ctx, DirectoryPickerOptions{Mode: opts.mode()})
	if err != nil {
		return a.failure("pick_directory", err)
	}
	if dir == nil {
		return handle.CancelledResult()
	}
	a.log.Debug("directory picked", zap.String("name", dir.Name()), zap.String("mode", string(opts.mode())))
	return handle.NativeResult(dir)
}

// SaveFile asks for a destination and writes data to it.
func (a *FullAdapter) SaveFile(ctx context.Context, opts SaveFileOptions, data []byte) handle.PickerResult {
	fh, err := a.host.ShowSaveFilePicker(ctx, SaveFilePickerOptions{
		SuggestedName: opts.SuggestedName,
		Types:         AcceptTypes(opts.Accept, opts.Description),
	})
	if err != nil {
		return a.failure("save_file", err)
	}
	if fh == nil {
		return handle.CancelledResult()
	}
	w, err := handle.AsWritableFile(fh)
	if err != nil {
		return a.failure("save_file", err)
	}
	wc, err := w.CreateWritable(ctx, false)
	if err != nil {
		return a.failure("save_file", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return a.failure("save_file", err)
	}
	if err := wc.Close(); err != nil {
		return a.failure("save_file", err)
	}
	a.log.Debug("file saved", zap.String("name", fh.Name()), zap.Int("bytes", len(data)))
	return handle.NativeResult(fh)
}

func (a *FullAdapter) QueryPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) handle.PermissionState {
	if h == nil || h.Native == nil {
		return handle.PermissionGranted
	}
	state, err := h.Native.QueryPermission(ctx, mode)
	if err != nil {
		a.log.Warn("permission query failed", zap.String("name", h.Name), zap.Error(err))
		return handle.PermissionDenied
	}
	return state
}

func (a *FullAdapter) RequestPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) bool {
	if h == nil || h.Native == nil {
		return true
	}
	state, err := h.Native.RequestPermission(ctx, mode)
	if err != nil {
		a.log.Warn("permission request failed", zap.String("name", h.Name), zap.Error(err))
		return false
	}
	return state == handle.PermissionGranted
}

func (a *FullAdapter) PickFilesLegacy(ctx context.Context, opts FilePickOptions) []*handle.Handle {
	return legacyFromResult(a.PickFiles(ctx, opts))
}

func (a *FullAdapter) PickDirectoryLegacy(ctx context.Context, opts DirectoryPickOptions) *handle.Handle {
	out := legacyFromResult(a.PickDirectory(ctx, opts))
	if len(out) == 0 {
		return nil
	}
	return out[0]
}

// failure maps a host error onto the result model: cancellation is not an
// error, everything else carries its message.
func (a *FullAdapter) failure(op string, err error) handle.PickerResult {
	if errors.Is(err, ErrUserAbort) {
		a.log.Debug("picker cancelled", zap.String("op", op))
		return handle.CancelledResult()
	}
	if apperrors.IsCapabilityGap(err) {
		a.log.Info("unsupported operation", zap.String("op", op), zap.Error(err))
		return handle.FailedResult(apperrors.Message(err))
	}
	a.log.Warn("picker failed", zap.String("op", op), zap.Error(err))
	return handle.FailedResult(hostMessage(err))
}

func hostMessage(err error) string {
	return apperrors.Message(err)
}
