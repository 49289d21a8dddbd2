package fileinfo

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Capabilities describes what a provider can do beyond listing.
type Capabilities struct {
	FastList bool // recursive walks are cheap
	Write    bool
}

// VFS is the minimal provider surface the shell channel reads through.
// Paths are provider-native, as returned by Resolve.
type VFS interface {
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	// Create truncates or creates path; the content is committed on Close.
	Create(path string) (io.WriteCloser, error)
	MkdirAll(path string) error
	// Remove deletes path; directories must be empty unless recursive.
	Remove(path string, recursive bool) error
	Capabilities() Capabilities
	Join(elem ...string) string
	Base(p string) string
}

// LocalFS implements VFS on the host filesystem.
type LocalFS struct{}

func (LocalFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }
func (LocalFS) Stat(path string) (os.FileInfo, error)      { return os.Stat(path) }
func (LocalFS) Open(path string) (io.ReadCloser, error)    { return os.Open(path) }
func (LocalFS) MkdirAll(path string) error                 { return os.MkdirAll(path, 0o755) }
func (LocalFS) Capabilities() Capabilities                 { return Capabilities{FastList: true, Write: true} }
func (LocalFS) Join(elem ...string) string                 { return filepath.Join(elem...) }
func (LocalFS) Base(p string) string                       { return filepath.Base(p) }

func (LocalFS) Remove(path string, recursive bool) error {
	if recursive {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// Create buffers writes and replaces path atomically on Close, so readers
// never observe a half-written file.
func (LocalFS) Create(path string) (io.WriteCloser, error) {
	return &atomicWriter{path: path}, nil
}

type atomicWriter struct {
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *atomicWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return atomic.WriteFile(w.path, &w.buf)
}
