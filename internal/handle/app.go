package handle

import "github.com/google/uuid"

// AppHandle is the preferred handle shape, tagged by Type and Kind.
//
//	native:   Native holds the host handle
//	fallback: File (kind file) or Files (kind directory, flattened) hold bytes
type AppHandle struct {
	ID   string
	Type Type
	Kind Kind
	Name string

	Native Entry
	File   *File
	Files  []*File
}

// NativeApp wraps a host handle.
func NativeApp(e Entry) AppHandle {
	return AppHandle{ID: uuid.NewString(), Type: TypeNative, Kind: e.Kind(), Name: e.Name(), Native: e}
}

// FallbackFileApp wraps a single captured file.
func FallbackFileApp(f *File) AppHandle {
	return AppHandle{ID: uuid.NewString(), Type: TypeFallback, Kind: KindFile, Name: f.Name, File: f}
}

// FallbackDirectoryApp wraps the flat file list of a directory pick. An empty
// name is derived from the files' relative paths.
func FallbackDirectoryApp(name string, files []*File) AppHandle {
	if name == "" {
		name = TopDirName(files)
	}
	return AppHandle{
		ID:    uuid.NewString(),
		Type:  TypeFallback,
		Kind:  KindDirectory,
		Name:  name,
		Files: append([]*File(nil), files...),
	}
}

// Persistable reports whether the handle may outlive the session. Fallback
// handles never do.
func (a AppHandle) Persistable() bool {
	if a.Type != TypeNative || a.Native == nil {
		return false
	}
	_, ok := a.Native.(Persistable)
	return ok
}

// PersistKey returns the host key of a persistable handle.
func (a AppHandle) PersistKey() (string, bool) {
	if !a.Persistable() {
		return "", false
	}
	return a.Native.(Persistable).PersistKey(), true
}
