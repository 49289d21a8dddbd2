package fileinfo

import (
	"io"
	"os"
)

func resolveNative(p string) (VFS, string, error) {
	vfs, parsed, err := ResolveRead(p)
	if err != nil {
		return nil, "", err
	}
	native := parsed.Native
	if native == "" {
		native = p
	}
	return vfs, native, nil
}

// ReadDirPortable lists p through whichever provider serves it.
func ReadDirPortable(p string) ([]os.DirEntry, error) {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return nil, err
	}
	return vfs.ReadDir(native)
}

// StatPortable stats p through whichever provider serves it.
func StatPortable(p string) (os.FileInfo, error) {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return nil, err
	}
	return vfs.Stat(native)
}

// OpenPortable opens p for reading through whichever provider serves it.
func OpenPortable(p string) (io.ReadCloser, error) {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return nil, err
	}
	return vfs.Open(native)
}

// CreatePortable opens p for writing through whichever provider serves it.
func CreatePortable(p string) (io.WriteCloser, error) {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return nil, err
	}
	return vfs.Create(native)
}

// MkdirAllPortable creates p and its parents.
func MkdirAllPortable(p string) error {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return err
	}
	return vfs.MkdirAll(native)
}

// RemovePortable deletes p.
func RemovePortable(p string, recursive bool) error {
	vfs, native, err := resolveNative(p)
	if err != nil {
		return err
	}
	return vfs.Remove(native, recursive)
}

// Provider returns the provider serving p.
func Provider(p string) (VFS, error) {
	vfs, _, err := resolveNative(p)
	return vfs, err
}
