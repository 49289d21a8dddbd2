package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
	"pickfs/internal/logging"
)

// RestrictedAdapter synthesizes the adapter contract over one-shot input
// controls. Nothing it returns can be persisted or written back.
type RestrictedAdapter struct {
	host InputHost
	caps capability.Capabilities
	log  *zap.Logger

	mu      sync.Mutex
	current InputControl // control of the latest pick; guarded by mu
}

var _ Adapter = (*RestrictedAdapter)(nil)

// NewRestrictedAdapter creates an adapter over host.
func NewRestrictedAdapter(host InputHost, caps capability.Capabilities, log *zap.Logger) *RestrictedAdapter {
	return &RestrictedAdapter{host: host, caps: caps, log: logging.OrNop(log).Named("restricted")}
}

func (a *RestrictedAdapter) Capabilities() capability.Capabilities { return a.caps }

func (a *RestrictedAdapter) PickFiles(ctx context.Context, opts FilePickOptions) handle.PickerResult {
	multiple := opts.AllowsMultiple()
	files, err := a.await(ctx, InputConfig{Accept: inputAccept(opts.Accept), Multiple: multiple})
	if err != nil {
		return a.failure("pick_files", err)
	}
	if len(files) == 0 {
		// an empty selection is a dismissal, not a successful empty pick
		a.log.Debug("no files selected")
		return handle.CancelledResult()
	}

	accepted := newAcceptFilter(opts.Accept).apply(files)
	if len(accepted) == 0 {
		return handle.FailedResult(fmt.Sprintf("none of the selected files match the accepted types (%s)",
			strings.Join(inputAccept(opts.Accept), ", ")))
	}
	if !multiple && len(accepted) > 1 {
		accepted = accepted[:1]
	}
	a.log.Debug("files selected", zap.Int("count", len(accepted)), zap.Int("dropped", len(files)-len(accepted)))
	return handle.FallbackResult(accepted)
}

func (a *RestrictedAdapter) PickDirectory(ctx context.Context, opts DirectoryPickOptions) handle.PickerResult {
	if !a.caps.SupportsDirectoryInput {
		return handle.FailedResult(directoryNotSupported)
	}
	if opts.mode() == handle.ModeReadWrite {
		a.log.Debug("readwrite requested; the selection will be a read-only snapshot")
	}
	files, err := a.await(ctx, InputConfig{Multiple: true, Directory: true})
	if err != nil {
		return a.failure("pick_directory", err)
	}
	if len(files) == 0 {
		a.log.Debug("no directory selected")
		return handle.CancelledResult()
	}
	a.log.Debug("directory selected", zap.String("name", handle.TopDirName(files)), zap.Int("files", len(files)))
	return handle.FallbackResult(files)
}

// SaveFile always fails: there is no write-back channel.
func (a *RestrictedAdapter) SaveFile(context.Context, SaveFileOptions, []byte) handle.PickerResult {
	err := apperrors.NewCapabilityError("save_file", "", "saving files is not supported in this environment")
	return handle.FailedResult(err.Message)
}

func (a *RestrictedAdapter) QueryPermission(context.Context, *handle.Handle, handle.PermissionMode) handle.PermissionState {
	return handle.PermissionGranted
}

func (a *RestrictedAdapter) RequestPermission(context.Context, *handle.Handle, handle.PermissionMode) bool {
	return true
}

func (a *RestrictedAdapter) PickFilesLegacy(ctx context.Context, opts FilePickOptions) []*handle.Handle {
	return legacyFromResult(a.PickFiles(ctx, opts))
}

func (a *RestrictedAdapter) PickDirectoryLegacy(ctx context.Context, opts DirectoryPickOptions) *handle.Handle {
	res := a.PickDirectory(ctx, opts)
	if !res.Success {
		return nil
	}
	return handle.LegacyFromEntry(handle.SyntheticDirectory("", res.Files), false)
}

// await runs one control from creation to removal. A control left attached
// by an earlier call is torn down first, which resolves that call as a
// dismissal.
func (a *RestrictedAdapter) await(ctx context.Context, cfg InputConfig) ([]*handle.File, error) {
	a.mu.Lock()
	if a.current != nil {
		a.log.Debug("removing stale input control")
		a.current.Remove()
	}
	ctl := a.host.CreateInput(cfg)
	a.current = ctl
	a.mu.Unlock()

	files, err := ctl.Await(ctx)

	a.mu.Lock()
	if a.current == ctl {
		a.current = nil
	}
	a.mu.Unlock()
	ctl.Remove()
	return files, err
}

func (a *RestrictedAdapter) failure(op string, err error) handle.PickerResult {
	if errors.Is(err, ErrUserAbort) {
		a.log.Debug("input cancelled", zap.String("op", op))
		return handle.CancelledResult()
	}
	a.log.Warn("input failed", zap.String("op", op), zap.Error(err))
	return handle.FailedResult(hostMessage(err))
}
