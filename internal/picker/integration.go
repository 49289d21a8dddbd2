package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"pickfs/internal/adapter"
	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/fileinfo"
	"pickfs/internal/handle"
)

// ShellIO is the desktop shell's own file channel. Paths are opaque strings
// that only the shell interprets.
type ShellIO interface {
	SelectFiles(ctx context.Context, extensions []string, multiple bool) ([]string, error)
	SelectDirectory(ctx context.Context) (string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ListFiles(ctx context.Context, root string) ([]fileinfo.FileInfo, error)
	OpenFile(ctx context.Context, path string) (handle.FileHandle, error)
	OpenDirectory(ctx context.Context, path string) (handle.DirectoryHandle, error)
}

// FilesResult is the outcome of Integration.PickFiles.
type FilesResult struct {
	Handles        []handle.AppHandle
	FallbackFiles  []*handle.File
	Error          string
	UserCancelled  bool
	IsFallbackMode bool
}

// DirectoryResult is the outcome of Integration.PickDirectory and
// Integration.ImportArchive.
type DirectoryResult struct {
	Handle         *handle.AppHandle
	FallbackFiles  []*handle.File
	Error          string
	UserCancelled  bool
	IsFallbackMode bool
}

// CompatibilityInfo is what the UI shows about the host.
type CompatibilityInfo struct {
	Name            string
	Version         string
	Level           capability.Level
	Limitations     []string
	Recommendations []string
	Capabilities    capability.Capabilities
}

// Integration is the surface application code calls. None of its methods
// panic; host panics are recovered and reported as errors.
type Integration struct {
	svc   *Service
	shell ShellIO
	log   *zap.Logger
}

// NewIntegration wraps svc. shellIO is only consulted on the desktop shell
// and may be nil elsewhere.
func NewIntegration(svc *Service, shellIO ShellIO) *Integration {
	return &Integration{svc: svc, shell: shellIO, log: svc.log.Named("integration")}
}

// Service returns the wrapped service.
func (i *Integration) Service() *Service { return i.svc }

func (i *Integration) useShell() bool {
	return i.svc.Kind() == capability.HostDesktopShell && i.shell != nil
}

func (i *Integration) recovered(op string, errOut *string) {
	if r := recover(); r != nil {
		i.log.Error("host panicked", zap.String("op", op), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		*errOut = fmt.Sprintf("unexpected error: %v", r)
	}
}

// PickFiles lets the user pick files with the given extensions.
func (i *Integration) PickFiles(ctx context.Context, extensions []string, description string, multiple bool) (res FilesResult) {
	defer i.recovered("pick_files", &res.Error)

	if i.useShell() {
		return i.pickShellFiles(ctx, extensions, multiple)
	}

	pr := i.svc.PickFiles(ctx, adapter.FilePickOptions{
		Accept:      adapter.AcceptForExtensions(extensions),
		Description: description,
		Multiple:    adapter.Bool(multiple),
	})
	res = FilesResult{Error: pr.Error, UserCancelled: pr.UserCancelled, IsFallbackMode: i.svc.IsFallbackMode()}
	if !pr.Success {
		return res
	}
	res.Handles = pr.AppHandles()
	if pr.Type == handle.TypeFallback {
		res.FallbackFiles = pr.Files
	}
	return res
}

func (i *Integration) pickShellFiles(ctx context.Context, extensions []string, multiple bool) FilesResult {
	norm := make([]string, 0, len(extensions))
	for _, e := range extensions {
		if e = adapter.NormalizeExtension(e); e != "" {
			norm = append(norm, e)
		}
	}
	paths, err := i.shell.SelectFiles(ctx, norm, multiple)
	if err != nil {
		return filesFailure(err)
	}
	if len(paths) == 0 {
		return FilesResult{Error: handle.CancelledResult().Error, UserCancelled: true}
	}

	var res FilesResult
	for _, p := range paths {
		fh, err := i.shell.OpenFile(ctx, p)
		if err != nil {
			return filesFailure(err)
		}
		data, err := i.shell.ReadFile(ctx, p)
		if err != nil {
			return filesFailure(err)
		}
		app := handle.NativeApp(fh)
		app.File = handle.NewMemFile(fh.Name(), "", data, time.Time{})
		res.Handles = append(res.Handles, app)
	}
	i.log.Debug("shell files picked", zap.Int("count", len(res.Handles)))
	return res
}

// PickDirectory lets the user pick a folder.
func (i *Integration) PickDirectory(ctx context.Context) (res DirectoryResult) {
	defer i.recovered("pick_directory", &res.Error)

	if i.useShell() {
		return i.pickShellDirectory(ctx)
	}

	pr := i.svc.PickDirectory(ctx, adapter.DefaultDirectoryPickOptions())
	res = DirectoryResult{Error: pr.Error, UserCancelled: pr.UserCancelled, IsFallbackMode: i.svc.IsFallbackMode()}
	if !pr.Success {
		return res
	}
	if app, ok := pr.DirectoryApp(); ok {
		res.Handle = &app
	}
	if pr.Type == handle.TypeFallback {
		res.FallbackFiles = pr.Files
	}
	return res
}

func (i *Integration) pickShellDirectory(ctx context.Context) DirectoryResult {
	root, err := i.shell.SelectDirectory(ctx)
	if err != nil {
		return directoryFailure(err)
	}
	if root == "" {
		return DirectoryResult{Error: handle.CancelledResult().Error, UserCancelled: true}
	}
	dh, err := i.shell.OpenDirectory(ctx, root)
	if err != nil {
		return directoryFailure(err)
	}
	listing, err := i.shell.ListFiles(ctx, root)
	if err != nil {
		return directoryFailure(err)
	}

	top := dh.Name()
	files := make([]*handle.File, 0, len(listing))
	for _, fi := range listing {
		p := fi.Path
		files = append(files, handle.NewLazyFile(fi.Name, path.Join(top, fi.RelPath), typeByName(fi.Name), fi.Size, fi.Modified,
			func(ctx context.Context) (io.ReadCloser, error) {
				data, err := i.shell.ReadFile(ctx, p)
				if err != nil {
					return nil, err
				}
				return io.NopCloser(bytes.NewReader(data)), nil
			}))
	}
	app := handle.NativeApp(dh)
	i.log.Debug("shell directory picked", zap.String("root", root), zap.Int("files", len(files)))
	return DirectoryResult{Handle: &app, FallbackFiles: files}
}

// ImportArchive expands a picked archive into a read-only folder.
func (i *Integration) ImportArchive(ctx context.Context, f *handle.File) (res DirectoryResult) {
	defer i.recovered("import_archive", &res.Error)

	if f == nil {
		return DirectoryResult{Error: "no archive selected"}
	}
	files, err := adapter.ExpandArchive(ctx, f)
	if err != nil {
		i.log.Warn("archive import failed", zap.String("name", f.Name), zap.Error(err))
		return DirectoryResult{Error: apperrors.Message(err)}
	}
	if len(files) == 0 {
		return DirectoryResult{Error: fmt.Sprintf("%s contains no files", f.Name)}
	}
	app := handle.FallbackDirectoryApp("", files)
	return DirectoryResult{Handle: &app, FallbackFiles: files, IsFallbackMode: true}
}

// CompatibilityInfo describes the host.
func (i *Integration) CompatibilityInfo() CompatibilityInfo {
	info := i.svc.BrowserInfo()
	return CompatibilityInfo{
		Name:            info.Name,
		Version:         info.Version,
		Level:           info.Level,
		Limitations:     info.Limitations,
		Recommendations: info.Recommendations,
		Capabilities:    info.Capabilities,
	}
}

// cancelled reports whether err is a dismissed dialog and returns the
// message to show otherwise.
func cancelled(err error) (bool, string) {
	if errors.Is(err, adapter.ErrUserAbort) {
		return true, handle.CancelledResult().Error
	}
	return false, apperrors.Message(err)
}

func filesFailure(err error) FilesResult {
	c, msg := cancelled(err)
	return FilesResult{Error: msg, UserCancelled: c}
}

func directoryFailure(err error) DirectoryResult {
	c, msg := cancelled(err)
	return DirectoryResult{Error: msg, UserCancelled: c}
}

func typeByName(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
