package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	apperrors "pickfs/internal/errors"
	"pickfs/internal/fileinfo"
	"pickfs/internal/handle"
)

// KeyPrefix marks persist keys minted by the shell channel.
const KeyPrefix = "shell:"

// File is a path-keyed file handle. The shell is trusted, so every
// permission answer is granted.
type File struct {
	ch   *Channel
	path string
}

// Directory is a path-keyed directory handle.
type Directory struct {
	ch   *Channel
	path string
}

var (
	_ handle.WritableFile      = (*File)(nil)
	_ handle.Persistable       = (*File)(nil)
	_ handle.WritableDirectory = (*Directory)(nil)
	_ handle.Persistable       = (*Directory)(nil)
)

// File returns a handle for path without touching the filesystem.
func (c *Channel) File(p string) *File { return &File{ch: c, path: fileinfo.NormalizeInputPath(p)} }

// Directory returns a handle for path without touching the filesystem.
func (c *Channel) Directory(p string) *Directory {
	return &Directory{ch: c, path: fileinfo.NormalizeInputPath(p)}
}

// OpenFile returns a handle for an existing regular file.
func (c *Channel) OpenFile(ctx context.Context, p string) (handle.FileHandle, error) {
	fi, err := c.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if fi.IsDir {
		return nil, apperrors.NewHostError("open_file", p, "is a directory", nil)
	}
	return c.File(p), nil
}

// OpenDirectory returns a handle for an existing directory.
func (c *Channel) OpenDirectory(ctx context.Context, p string) (handle.DirectoryHandle, error) {
	fi, err := c.Stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir {
		return nil, apperrors.NewHostError("open_directory", p, "not a directory", nil)
	}
	return c.Directory(p), nil
}

// Reopen resolves a persist key from an earlier session.
func (c *Channel) Reopen(ctx context.Context, key string, kind handle.Kind) (handle.Entry, error) {
	p, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok || p == "" {
		return nil, fmt.Errorf("not a shell key: %q", key)
	}
	if kind == handle.KindDirectory {
		return c.OpenDirectory(ctx, p)
	}
	return c.OpenFile(ctx, p)
}

func (f *File) Kind() handle.Kind  { return handle.KindFile }
func (f *File) Name() string       { return fileinfo.BaseName(f.path) }
func (f *File) Path() string       { return f.path }
func (f *File) PersistKey() string { return KeyPrefix + f.path }

func (f *File) IsSameEntry(other handle.Entry) bool {
	o, ok := other.(*File)
	return ok && o.path == f.path
}

func (f *File) QueryPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionGranted, nil
}

func (f *File) RequestPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionGranted, nil
}

// GetFile reads the current content through the channel.
func (f *File) GetFile(ctx context.Context) (*handle.File, error) {
	fi, err := f.ch.Stat(ctx, f.path)
	if err != nil {
		return nil, err
	}
	data, err := f.ch.ReadFile(ctx, f.path)
	if err != nil {
		return nil, err
	}
	return handle.NewMemFile(fi.Name, "", data, fi.Modified), nil
}

// CreateWritable returns a writer that replaces the file on Close. With
// keepExistingData the current content is kept and writes are appended.
func (f *File) CreateWritable(ctx context.Context, keepExistingData bool) (io.WriteCloser, error) {
	var existing []byte
	if keepExistingData {
		data, err := f.ch.ReadFile(ctx, f.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		existing = data
	}
	w, err := f.ch.Create(ctx, f.path)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if _, err := w.Write(existing); err != nil {
			w.Close()
			return nil, hostError("create_writable", f.path, err)
		}
	}
	return w, nil
}

func (d *Directory) Kind() handle.Kind  { return handle.KindDirectory }
func (d *Directory) Name() string       { return fileinfo.BaseName(d.path) }
func (d *Directory) Path() string       { return d.path }
func (d *Directory) PersistKey() string { return KeyPrefix + d.path }

func (d *Directory) IsSameEntry(other handle.Entry) bool {
	o, ok := other.(*Directory)
	return ok && o.path == d.path
}

func (d *Directory) QueryPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionGranted, nil
}

func (d *Directory) RequestPermission(context.Context, handle.PermissionMode) (handle.PermissionState, error) {
	return handle.PermissionGranted, nil
}

// Entries lists the directory each time it is enumerated.
func (d *Directory) Entries() handle.Sequence {
	return handle.HostSequence(func(ctx context.Context, yield func(handle.DirEntry) bool) error {
		children, err := d.ch.ReadDir(ctx, d.path)
		if err != nil {
			return err
		}
		for _, c := range children {
			var h handle.Entry
			if c.IsDir {
				h = d.ch.Directory(c.Path)
			} else {
				h = d.ch.File(c.Path)
			}
			if !yield(handle.DirEntry{Name: c.Name, Handle: h}) {
				return nil
			}
		}
		return nil
	})
}

func (d *Directory) child(op, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", apperrors.NewHostError(op, d.path, fmt.Sprintf("invalid entry name %q", name), nil)
	}
	return fileinfo.JoinPath(d.path, name), nil
}

func (d *Directory) GetFileHandle(ctx context.Context, name string, create bool) (handle.FileHandle, error) {
	p, err := d.child("get_file_handle", name)
	if err != nil {
		return nil, err
	}
	fh, err := d.ch.OpenFile(ctx, p)
	if err == nil || !create || !errors.Is(err, fs.ErrNotExist) {
		return fh, err
	}
	if err := d.ch.WriteFile(ctx, p, nil); err != nil {
		return nil, err
	}
	return d.ch.File(p), nil
}

func (d *Directory) GetDirectoryHandle(ctx context.Context, name string, create bool) (handle.DirectoryHandle, error) {
	p, err := d.child("get_directory_handle", name)
	if err != nil {
		return nil, err
	}
	dh, err := d.ch.OpenDirectory(ctx, p)
	if err == nil || !create || !errors.Is(err, fs.ErrNotExist) {
		return dh, err
	}
	if err := d.ch.MkdirAll(ctx, p); err != nil {
		return nil, err
	}
	return d.ch.Directory(p), nil
}

func (d *Directory) RemoveEntry(ctx context.Context, name string, recursive bool) error {
	p, err := d.child("remove_entry", name)
	if err != nil {
		return err
	}
	return d.ch.Remove(ctx, p, recursive)
}
