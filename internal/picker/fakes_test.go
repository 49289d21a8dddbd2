package picker

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"pickfs/internal/adapter"
	"pickfs/internal/capability"
	"pickfs/internal/handle"
)

// keyedFile is a persistable native file handle.
type keyedFile struct {
	name string
	perm handle.PermissionState
}

func (f *keyedFile) Kind() handle.Kind                   { return handle.KindFile }
func (f *keyedFile) Name() string                        { return f.name }
func (f *keyedFile) PersistKey() string                  { return "fake:" + f.name }
func (f *keyedFile) IsSameEntry(other handle.Entry) bool {
	o, ok := other.(*keyedFile)
	return ok && o.name == f.name
}
func (f *keyedFile) QueryPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return f.perm, nil
}
func (f *keyedFile) RequestPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return f.perm, nil
}
func (f *keyedFile) GetFile(context.Context) (*handle.File, error) {
	return handle.NewMemFile(f.name, "", []byte(f.name), time.Time{}), nil
}

type fakeNative struct {
	files []handle.FileHandle
	err   error
	panic bool

	mu      sync.Mutex
	known   map[string]*keyedFile
	reopens int
}

func (h *fakeNative) ShowOpenFilePicker(context.Context, adapter.OpenFilePickerOptions) ([]handle.FileHandle, error) {
	if h.panic {
		panic("picker exploded")
	}
	return h.files, h.err
}
func (h *fakeNative) ShowDirectoryPicker(context.Context, adapter.DirectoryPickerOptions) (handle.DirectoryHandle, error) {
	return nil, h.err
}
func (h *fakeNative) ShowSaveFilePicker(context.Context, adapter.SaveFilePickerOptions) (handle.FileHandle, error) {
	return nil, h.err
}

func (h *fakeNative) Reopen(_ context.Context, key string, _ handle.Kind) (handle.Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reopens++
	if f, ok := h.known[key]; ok {
		return f, nil
	}
	return nil, &fs.PathError{Op: "reopen", Path: key, Err: fs.ErrNotExist}
}

type fakeControl struct{ files []*handle.File }

func (c *fakeControl) Await(context.Context) ([]*handle.File, error) { return c.files, nil }
func (c *fakeControl) Remove()                                        {}

type fakeInput struct {
	files   []*handle.File
	created int
}

func (h *fakeInput) CreateInput(adapter.InputConfig) adapter.InputControl {
	h.created++
	return &fakeControl{files: h.files}
}

func nativeEnv() capability.HostEnv {
	return capability.HostEnv{HasOpenFilePicker: true, HasDirectoryPicker: true, HasSaveFilePicker: true}
}

func adapterDefaults() adapter.FilePickOptions {
	return adapter.DefaultFilePickOptions()
}

func adapterDirDefaults() adapter.DirectoryPickOptions {
	return adapter.DefaultDirectoryPickOptions()
}
