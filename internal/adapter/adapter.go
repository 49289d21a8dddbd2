// Package adapter implements the backends behind the picker service: one for
// hosts with native handle-based pickers and one for hosts that only offer a
// one-shot input control.
package adapter

import (
	"context"
	"errors"

	"pickfs/internal/capability"
	"pickfs/internal/handle"
)

// ErrUserAbort is the host's cancellation signal. Hosts wrap it when the
// user dismisses a picker.
var ErrUserAbort = errors.New("the user aborted a request")

const directoryNotSupported = "directory selection is not supported in this environment"

// FilePickOptions configures PickFiles.
type FilePickOptions struct {
	Accept                 map[string][]string // MIME type -> extensions
	Description            string
	Multiple               *bool // nil means true
	ExcludeAcceptAllOption bool
}

// DefaultFilePickOptions allows multiple files of any type.
func DefaultFilePickOptions() FilePickOptions {
	return FilePickOptions{Multiple: Bool(true)}
}

// AllowsMultiple resolves the Multiple default.
func (o FilePickOptions) AllowsMultiple() bool {
	return o.Multiple == nil || *o.Multiple
}

// DirectoryPickOptions configures PickDirectory.
type DirectoryPickOptions struct {
	Mode handle.PermissionMode // "" means read
}

// DefaultDirectoryPickOptions requests read access.
func DefaultDirectoryPickOptions() DirectoryPickOptions {
	return DirectoryPickOptions{Mode: handle.ModeRead}
}

func (o DirectoryPickOptions) mode() handle.PermissionMode {
	if o.Mode == "" {
		return handle.ModeRead
	}
	return o.Mode
}

// SaveFileOptions configures SaveFile.
type SaveFileOptions struct {
	SuggestedName string
	Accept        map[string][]string
	Description   string
}

// Bool returns a pointer to b, for option fields.
func Bool(b bool) *bool { return &b }

// Adapter is the contract every backend implements. No method panics or
// returns an error for an expected failure; outcomes are PickerResult values.
type Adapter interface {
	Capabilities() capability.Capabilities

	PickFiles(ctx context.Context, opts FilePickOptions) handle.PickerResult
	PickDirectory(ctx context.Context, opts DirectoryPickOptions) handle.PickerResult
	SaveFile(ctx context.Context, opts SaveFileOptions, data []byte) handle.PickerResult

	// Handles without a native backing always report granted.
	QueryPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) handle.PermissionState
	RequestPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) bool

	// Legacy variants return the older Handle shape and swallow failures.
	PickFilesLegacy(ctx context.Context, opts FilePickOptions) []*handle.Handle
	PickDirectoryLegacy(ctx context.Context, opts DirectoryPickOptions) *handle.Handle
}

// AcceptType is one entry of a native picker's type filter.
type AcceptType struct {
	Description string
	Accept      map[string][]string
}

// OpenFilePickerOptions is handed to NativeHost.ShowOpenFilePicker.
type OpenFilePickerOptions struct {
	Types                  []AcceptType
	Multiple               bool
	ExcludeAcceptAllOption bool
}

// DirectoryPickerOptions is handed to NativeHost.ShowDirectoryPicker.
type DirectoryPickerOptions struct {
	Mode handle.PermissionMode
}

// SaveFilePickerOptions is handed to NativeHost.ShowSaveFilePicker.
type SaveFilePickerOptions struct {
	SuggestedName string
	Types         []AcceptType
}

// NativeHost exposes handle-based pickers. Implementations block until the
// user resolves the dialog and return an error wrapping ErrUserAbort on
// cancellation.
type NativeHost interface {
	ShowOpenFilePicker(ctx context.Context, opts OpenFilePickerOptions) ([]handle.FileHandle, error)
	ShowDirectoryPicker(ctx context.Context, opts DirectoryPickerOptions) (handle.DirectoryHandle, error)
	ShowSaveFilePicker(ctx context.Context, opts SaveFilePickerOptions) (handle.FileHandle, error)
}

// HandleResolver is implemented by native hosts that can reopen a handle
// from its persist key in a later session.
type HandleResolver interface {
	Reopen(ctx context.Context, key string, kind handle.Kind) (handle.Entry, error)
}

// InputConfig describes a transient input control.
type InputConfig struct {
	Accept    []string // ".csv", "text/csv", ...; advisory
	Multiple  bool
	Directory bool
}

// InputControl is a one-shot, invisible input control.
//
// Await blocks until the user confirms or dismisses the selection. A
// dismissed control yields no files and no error. Remove detaches the
// control; it is idempotent and unblocks a pending Await with no files.
type InputControl interface {
	Await(ctx context.Context) ([]*handle.File, error)
	Remove()
}

// InputHost creates input controls.
type InputHost interface {
	CreateInput(cfg InputConfig) InputControl
}

func legacyFromResult(res handle.PickerResult) []*handle.Handle {
	if !res.Success {
		return nil
	}
	var out []*handle.Handle
	switch res.Type {
	case handle.TypeNative:
		for _, h := range res.Handles {
			out = append(out, handle.LegacyFromEntry(h, true))
		}
	case handle.TypeFallback:
		for _, f := range res.Files {
			out = append(out, handle.LegacyFromEntry(handle.NewMemoryFile(f), false))
		}
	}
	return out
}
