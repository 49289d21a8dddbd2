package handle

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// File is the content side of a picked file. It either holds the bytes that
// were captured at pick time or opens them lazily from the host.
type File struct {
	Name         string
	RelativePath string // "topDir/sub/file.csv" for directory picks, empty otherwise
	Type         string // MIME type
	Size         int64
	LastModified time.Time

	data []byte
	open func(ctx context.Context) (io.ReadCloser, error)
}

// NewMemFile captures data in memory. The MIME type is sniffed from content.
func NewMemFile(name, relativePath string, data []byte, modified time.Time) *File {
	return &File{
		Name:         name,
		RelativePath: relativePath,
		Type:         mimetype.Detect(data).String(),
		Size:         int64(len(data)),
		LastModified: modified,
		data:         data,
	}
}

// NewLazyFile describes a host file whose content is read on Open.
func NewLazyFile(name, relativePath, mimeType string, size int64, modified time.Time,
	open func(ctx context.Context) (io.ReadCloser, error)) *File {
	return &File{
		Name:         name,
		RelativePath: relativePath,
		Type:         mimeType,
		Size:         size,
		LastModified: modified,
		open:         open,
	}
}

// InMemory reports whether the content was captured at pick time.
func (f *File) InMemory() bool { return f.open == nil }

// Path returns RelativePath when set, Name otherwise.
func (f *File) Path() string {
	if f.RelativePath != "" {
		return f.RelativePath
	}
	return f.Name
}

// Open returns a reader over the file content.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.open != nil {
		return f.open(ctx)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Bytes reads the whole content.
func (f *File) Bytes(ctx context.Context) ([]byte, error) {
	if f.open == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return f.data, nil
	}
	rc, err := f.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
