package handle

import (
	"context"
	"fmt"

	apperrors "pickfs/internal/errors"
)

// Convert returns a handle-shaped value for a. Native handles pass through
// untouched; fallback handles are served from the bytes captured at pick time.
func Convert(a AppHandle) (Entry, error) {
	switch a.Type {
	case TypeNative:
		if a.Native == nil {
			return nil, fmt.Errorf("native handle %q has no host backing", a.Name)
		}
		return a.Native, nil
	case TypeFallback:
		if a.Kind == KindFile {
			if a.File == nil {
				return nil, fmt.Errorf("fallback file %q has no content", a.Name)
			}
			return NewMemoryFile(a.File), nil
		}
		return SyntheticDirectory(a.Name, a.Files), nil
	default:
		return nil, fmt.Errorf("unknown handle type %q", a.Type)
	}
}

// ConvertFile is Convert narrowed to files.
func ConvertFile(a AppHandle) (FileHandle, error) {
	e, err := Convert(a)
	if err != nil {
		return nil, err
	}
	f, ok := e.(FileHandle)
	if !ok {
		return nil, fmt.Errorf("%q is not a file", a.Name)
	}
	return f, nil
}

// ConvertDirectory is Convert narrowed to directories.
func ConvertDirectory(a AppHandle) (DirectoryHandle, error) {
	e, err := Convert(a)
	if err != nil {
		return nil, err
	}
	d, ok := e.(DirectoryHandle)
	if !ok {
		return nil, fmt.Errorf("%q is not a directory", a.Name)
	}
	return d, nil
}

// ToLegacy converts a into the older Handle shape.
func ToLegacy(a AppHandle) (*Handle, error) {
	e, err := Convert(a)
	if err != nil {
		return nil, err
	}
	return LegacyFromEntry(e, a.Type == TypeNative), nil
}

// FromLegacy converts h into an AppHandle. Native handles keep their host
// backing; fallback files are read once so the bytes travel with the result.
func FromLegacy(ctx context.Context, h *Handle) (AppHandle, error) {
	if h == nil {
		return AppHandle{}, fmt.Errorf("nil handle")
	}
	if h.Native != nil {
		return NativeApp(h.Native), nil
	}
	switch h.Kind {
	case KindFile:
		f, err := h.GetFile(ctx)
		if err != nil {
			return AppHandle{}, err
		}
		return FallbackFileApp(f), nil
	case KindDirectory:
		if d, ok := h.source.(*memoryDirectory); ok {
			return FallbackDirectoryApp(d.name, d.Files()), nil
		}
		var files []*File
		for e, err := range h.Entries().All(ctx) {
			if err != nil {
				return AppHandle{}, err
			}
			fh, ok := e.Handle.(FileHandle)
			if !ok {
				continue
			}
			f, err := fh.GetFile(ctx)
			if err != nil {
				return AppHandle{}, err
			}
			files = append(files, f)
		}
		return FallbackDirectoryApp(h.Name, files), nil
	}
	return AppHandle{}, fmt.Errorf("unknown handle kind %q", h.Kind)
}

// AsWritableFile returns e's write trait, or a capability error naming the
// missing operation.
func AsWritableFile(e Entry) (WritableFile, error) {
	if w, ok := e.(WritableFile); ok {
		return w, nil
	}
	return nil, apperrors.NewCapabilityError("create_writable", e.Name(),
		"writing files is not supported in this environment")
}

// AsWritableDirectory returns e's directory mutation trait, or a capability
// error naming the missing operation.
func AsWritableDirectory(e Entry) (WritableDirectory, error) {
	if w, ok := e.(WritableDirectory); ok {
		return w, nil
	}
	return nil, apperrors.NewCapabilityError("modify_directory", e.Name(),
		"creating or removing entries is not supported in this environment")
}
