package handle

import (
	"context"
	"strings"
)

// memoryFile exposes a captured File through the FileHandle contract. It has
// no host backing, so it implements no write traits and every permission
// answer is granted.
type memoryFile struct {
	file *File
}

// NewMemoryFile wraps f as a read-only handle.
func NewMemoryFile(f *File) FileHandle { return &memoryFile{file: f} }

func (m *memoryFile) Kind() Kind   { return KindFile }
func (m *memoryFile) Name() string { return m.file.Name }

func (m *memoryFile) IsSameEntry(other Entry) bool {
	o, ok := other.(*memoryFile)
	return ok && o.file == m.file
}

func (m *memoryFile) QueryPermission(context.Context, PermissionMode) (PermissionState, error) {
	return PermissionGranted, nil
}

func (m *memoryFile) RequestPermission(context.Context, PermissionMode) (PermissionState, error) {
	return PermissionGranted, nil
}

func (m *memoryFile) GetFile(ctx context.Context) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.file, nil
}

// memoryDirectory is a directory reconstructed from a flat file list.
// Placeholders stand for sub-directories the host never let us enumerate.
type memoryDirectory struct {
	name        string
	files       []*File
	placeholder bool
}

// SyntheticDirectory rebuilds one level of hierarchy from files whose
// RelativePath starts with the picked directory's name. Root files are
// listed directly; each distinct first sub-segment becomes one empty
// placeholder directory.
func SyntheticDirectory(name string, files []*File) DirectoryHandle {
	if name == "" {
		name = TopDirName(files)
	}
	return &memoryDirectory{name: name, files: append([]*File(nil), files...)}
}

func (d *memoryDirectory) Kind() Kind   { return KindDirectory }
func (d *memoryDirectory) Name() string { return d.name }

func (d *memoryDirectory) IsSameEntry(other Entry) bool {
	o, ok := other.(*memoryDirectory)
	if !ok || o.name != d.name || o.placeholder != d.placeholder || len(o.files) != len(d.files) {
		return false
	}
	for i := range d.files {
		if d.files[i] != o.files[i] {
			return false
		}
	}
	return true
}

func (d *memoryDirectory) QueryPermission(context.Context, PermissionMode) (PermissionState, error) {
	return PermissionGranted, nil
}

func (d *memoryDirectory) RequestPermission(context.Context, PermissionMode) (PermissionState, error) {
	return PermissionGranted, nil
}

func (d *memoryDirectory) Entries() Sequence {
	if d.placeholder {
		return FiniteSequence(nil)
	}
	return FiniteSequence(reconstruct(d.files))
}

// Files returns the flattened list the directory was built from.
func (d *memoryDirectory) Files() []*File { return append([]*File(nil), d.files...) }

func reconstruct(files []*File) []DirEntry {
	var out []DirEntry
	seenDirs := make(map[string]bool)
	for _, f := range files {
		segs := splitRelative(f)
		if len(segs) > 1 {
			segs = segs[1:] // drop the picked directory's own name
		}
		if len(segs) == 1 {
			out = append(out, DirEntry{Name: segs[0], Handle: NewMemoryFile(f)})
			continue
		}
		sub := segs[0]
		if seenDirs[sub] {
			continue
		}
		seenDirs[sub] = true
		out = append(out, DirEntry{Name: sub, Handle: &memoryDirectory{name: sub, placeholder: true}})
	}
	return out
}

func splitRelative(f *File) []string {
	rel := strings.Trim(strings.ReplaceAll(f.RelativePath, "\\", "/"), "/")
	if rel == "" {
		return []string{f.Name}
	}
	var segs []string
	for _, s := range strings.Split(rel, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// TopDirName returns the first path segment shared by a directory pick, or
// "" when the files carry no relative paths.
func TopDirName(files []*File) string {
	for _, f := range files {
		segs := splitRelative(f)
		if len(segs) > 1 {
			return segs[0]
		}
	}
	return ""
}
