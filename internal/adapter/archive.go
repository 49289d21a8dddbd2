package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mholt/archives"

	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
)

// ExpandArchive unpacks an archive file into the flat, relative-path file
// list a directory pick would have produced. When the archive has no single
// top-level folder, its base name becomes the top directory.
func ExpandArchive(ctx context.Context, f *handle.File) ([]*handle.File, error) {
	data, err := f.Bytes(ctx)
	if err != nil {
		return nil, apperrors.NewHostError("expand_archive", f.Name, "reading archive failed", err)
	}
	format, _, err := archives.Identify(ctx, f.Name, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewCapabilityError("expand_archive", f.Name,
			fmt.Sprintf("%s is not a supported archive", f.Name))
	}
	ex, ok := format.(archives.Extractor)
	if !ok {
		return nil, apperrors.NewCapabilityError("expand_archive", f.Name,
			fmt.Sprintf("%s is compressed but not an archive", f.Name))
	}

	type member struct {
		rel  string
		file archives.FileInfo
		data []byte
	}
	var members []member
	err = ex.Extract(ctx, bytes.NewReader(data), func(ctx context.Context, info archives.FileInfo) error {
		if info.IsDir() || info.LinkTarget != "" {
			return nil
		}
		rel := cleanMemberPath(info.NameInArchive)
		if rel == "" {
			return nil
		}
		rc, err := info.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		members = append(members, member{rel: rel, file: info, data: content})
		return nil
	})
	if err != nil {
		return nil, apperrors.NewHostError("expand_archive", f.Name, "extracting archive failed", err)
	}

	prefix := ""
	if !sharedTopDir(members, func(m member) string { return m.rel }) {
		prefix = archiveBaseName(f.Name) + "/"
	}
	out := make([]*handle.File, 0, len(members))
	for _, m := range members {
		out = append(out, handle.NewMemFile(path.Base(m.rel), prefix+m.rel, m.data, m.file.ModTime()))
	}
	return out, nil
}

func cleanMemberPath(name string) string {
	p := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

func sharedTopDir[T any](items []T, rel func(T) string) bool {
	if len(items) == 0 {
		return false
	}
	top := ""
	for _, it := range items {
		first, rest, ok := strings.Cut(rel(it), "/")
		if !ok || rest == "" {
			return false
		}
		if top == "" {
			top = first
		} else if first != top {
			return false
		}
	}
	return true
}

func archiveBaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
