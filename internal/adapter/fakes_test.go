package adapter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sync"
	"time"

	"pickfs/internal/handle"
)

type nativeFile struct {
	name    string
	data    *bytes.Buffer
	perm    handle.PermissionState
	permErr error
}

func newNativeFile(name, content string) *nativeFile {
	return &nativeFile{name: name, data: bytes.NewBufferString(content), perm: handle.PermissionGranted}
}

func (f *nativeFile) Kind() handle.Kind                   { return handle.KindFile }
func (f *nativeFile) Name() string                        { return f.name }
func (f *nativeFile) IsSameEntry(other handle.Entry) bool { return other == handle.Entry(f) }
func (f *nativeFile) QueryPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return f.perm, f.permErr
}
func (f *nativeFile) RequestPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return f.perm, f.permErr
}
func (f *nativeFile) GetFile(context.Context) (*handle.File, error) {
	content := append([]byte(nil), f.data.Bytes()...)
	return handle.NewMemFile(f.name, "", content, time.Time{}), nil
}

type writeCloser struct {
	target *bytes.Buffer
	buf    bytes.Buffer
}

func (w *writeCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *writeCloser) Close() error {
	w.target.Reset()
	_, err := w.target.Write(w.buf.Bytes())
	return err
}

func (f *nativeFile) CreateWritable(context.Context, bool) (io.WriteCloser, error) {
	return &writeCloser{target: f.data}, nil
}

type nativeDir struct{ name string }

func (d *nativeDir) Kind() handle.Kind                   { return handle.KindDirectory }
func (d *nativeDir) Name() string                        { return d.name }
func (d *nativeDir) IsSameEntry(other handle.Entry) bool { return other == handle.Entry(d) }
func (d *nativeDir) QueryPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionPrompt, nil
}
func (d *nativeDir) RequestPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionGranted, nil
}
func (d *nativeDir) Entries() handle.Sequence { return handle.FiniteSequence(nil) }

// fakeNativeHost records the options it was called with.
type fakeNativeHost struct {
	files    []handle.FileHandle
	dir      handle.DirectoryHandle
	save     handle.FileHandle
	err      error
	openOpts OpenFilePickerOptions
	dirOpts  DirectoryPickerOptions
}

func (h *fakeNativeHost) ShowOpenFilePicker(_ context.Context, opts OpenFilePickerOptions) ([]handle.FileHandle, error) {
	h.openOpts = opts
	return h.files, h.err
}

func (h *fakeNativeHost) ShowDirectoryPicker(_ context.Context, opts DirectoryPickerOptions) (handle.DirectoryHandle, error) {
	h.dirOpts = opts
	return h.dir, h.err
}

func (h *fakeNativeHost) ShowSaveFilePicker(context.Context, SaveFilePickerOptions) (handle.FileHandle, error) {
	return h.save, h.err
}

// fakeControl resolves with files, or blocks until removed when block is set.
type fakeControl struct {
	cfg     InputConfig
	files   []*handle.File
	err     error
	block   bool
	once    sync.Once
	removed chan struct{}
}

func (c *fakeControl) Await(ctx context.Context) ([]*handle.File, error) {
	if c.block {
		select {
		case <-c.removed:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.files, c.err
}

func (c *fakeControl) Remove() { c.once.Do(func() { close(c.removed) }) }

func (c *fakeControl) isRemoved() bool {
	select {
	case <-c.removed:
		return true
	default:
		return false
	}
}

type fakeInputHost struct {
	mu       sync.Mutex
	next     []*fakeControl
	created  []*fakeControl
	onCreate func(*fakeControl)
}

func (h *fakeInputHost) CreateInput(cfg InputConfig) InputControl {
	h.mu.Lock()
	var c *fakeControl
	if len(h.next) > 0 {
		c = h.next[0]
		h.next = h.next[1:]
	} else {
		c = &fakeControl{}
	}
	c.cfg = cfg
	c.removed = make(chan struct{})
	h.created = append(h.created, c)
	cb := h.onCreate
	h.mu.Unlock()
	if cb != nil {
		cb(c)
	}
	return c
}

func memFiles(paths ...string) []*handle.File {
	out := make([]*handle.File, 0, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		rel := ""
		if name != p {
			rel = p
		}
		out = append(out, handle.NewMemFile(name, rel, []byte("x"), time.Time{}))
	}
	return out
}

var errDisk = errors.New("device not ready")
