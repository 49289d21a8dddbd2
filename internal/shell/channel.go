// Package shell is the trusted desktop shell's file channel: paths are
// chosen with the shell's own dialogs and read and written through
// internal/fileinfo rather than through picker handles.
package shell

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	apperrors "pickfs/internal/errors"
	"pickfs/internal/fileinfo"
	"pickfs/internal/logging"
)

// PathPicker shows the shell's path dialogs. Implementations return an
// error wrapping adapter.ErrUserAbort when the user dismisses a dialog.
type PathPicker interface {
	PickFilePaths(ctx context.Context, extensions []string, multiple bool) ([]string, error)
	PickDirectoryPath(ctx context.Context) (string, error)
	PickSavePath(ctx context.Context, suggestedName string, extensions []string) (string, error)
}

// Channel reads and writes by path. It is safe for concurrent use.
type Channel struct {
	picker PathPicker
	log    *zap.Logger
}

// NewChannel creates a channel. picker may be nil when paths always come
// from elsewhere (restored handles, command line).
func NewChannel(picker PathPicker, log *zap.Logger) *Channel {
	return &Channel{picker: picker, log: logging.OrNop(log).Named("shell")}
}

func (c *Channel) pathPicker(op string) (PathPicker, error) {
	if c.picker == nil {
		return nil, apperrors.NewCapabilityError(op, "", "the shell has no path dialogs in this environment")
	}
	return c.picker, nil
}

// SelectFiles lets the user choose file paths.
func (c *Channel) SelectFiles(ctx context.Context, extensions []string, multiple bool) ([]string, error) {
	p, err := c.pathPicker("select_files")
	if err != nil {
		return nil, err
	}
	return p.PickFilePaths(ctx, extensions, multiple)
}

// SelectDirectory lets the user choose a directory path.
func (c *Channel) SelectDirectory(ctx context.Context) (string, error) {
	p, err := c.pathPicker("select_directory")
	if err != nil {
		return "", err
	}
	return p.PickDirectoryPath(ctx)
}

// SelectSavePath lets the user choose where to write a file.
func (c *Channel) SelectSavePath(ctx context.Context, suggestedName string, extensions []string) (string, error) {
	p, err := c.pathPicker("select_save_path")
	if err != nil {
		return "", err
	}
	return p.PickSavePath(ctx, suggestedName, extensions)
}

// ReadFile returns the content of path.
func (c *Channel) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := fileinfo.OpenPortable(p)
	if err != nil {
		return nil, hostError("read_file", p, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, hostError("read_file", p, err)
	}
	c.log.Debug("file read", zap.String("path", p), zap.Int("bytes", len(data)))
	return data, nil
}

// Open returns a reader for path.
func (c *Channel) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := fileinfo.OpenPortable(p)
	if err != nil {
		return nil, hostError("open", p, err)
	}
	return rc, nil
}

// Create returns a writer that replaces path on Close.
func (c *Channel) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := fileinfo.CreatePortable(p)
	if err != nil {
		return nil, hostError("create", p, err)
	}
	return w, nil
}

// WriteFile replaces the content of path.
func (c *Channel) WriteFile(ctx context.Context, p string, data []byte) error {
	w, err := c.Create(ctx, p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return hostError("write_file", p, err)
	}
	if err := w.Close(); err != nil {
		return hostError("write_file", p, err)
	}
	c.log.Debug("file written", zap.String("path", p), zap.Int("bytes", len(data)))
	return nil
}

// Stat describes path.
func (c *Channel) Stat(ctx context.Context, p string) (fileinfo.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return fileinfo.FileInfo{}, err
	}
	fi, err := fileinfo.StatPortable(p)
	if err != nil {
		return fileinfo.FileInfo{}, hostError("stat", p, err)
	}
	info := fileinfo.Describe(p, "", fi)
	info.Name = fileinfo.BaseName(p)
	return info, nil
}

// ReadDir lists the direct children of dir, sorted by name.
func (c *Channel) ReadDir(ctx context.Context, dir string) ([]fileinfo.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fileinfo.ReadDirPortable(dir)
	if err != nil {
		return nil, hostError("read_dir", dir, err)
	}
	out := make([]fileinfo.FileInfo, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			c.log.Debug("skipping unreadable entry", zap.String("name", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, fileinfo.Describe(fileinfo.JoinPath(dir, e.Name()), e.Name(), fi))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MkdirAll creates dir and its parents.
func (c *Channel) MkdirAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileinfo.MkdirAllPortable(dir); err != nil {
		return hostError("mkdir", dir, err)
	}
	return nil
}

// Remove deletes path.
func (c *Channel) Remove(ctx context.Context, p string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileinfo.RemovePortable(p, recursive); err != nil {
		return hostError("remove", p, err)
	}
	return nil
}

// ListFiles returns every regular file below root with RelPath set to the
// slash-separated path from root, sorted by RelPath. Local trees are walked
// in parallel; remote trees one directory at a time.
func (c *Channel) ListFiles(ctx context.Context, root string) ([]fileinfo.FileInfo, error) {
	vfs, err := fileinfo.Provider(root)
	if err != nil {
		return nil, hostError("list_files", root, err)
	}
	var out []fileinfo.FileInfo
	if _, local := vfs.(fileinfo.LocalFS); local && vfs.Capabilities().FastList && !fileinfo.IsSMBDisplay(root) {
		out, err = c.walkLocal(ctx, root)
	} else {
		out, err = c.walkRemote(ctx, root, "")
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	c.log.Debug("files listed", zap.String("root", root), zap.Int("count", len(out)))
	return out, nil
}

func (c *Channel) walkLocal(ctx context.Context, root string) ([]fileinfo.FileInfo, error) {
	var (
		mu  sync.Mutex
		out []fileinfo.FileInfo
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			c.log.Debug("walk error", zap.String("path", p), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, ok := fileinfo.RelPath(root, p)
		if !ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		info := fileinfo.Describe(p, rel, fi)
		mu.Lock()
		out = append(out, info)
		mu.Unlock()
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, hostError("list_files", root, err)
	}
	return out, nil
}

func (c *Channel) walkRemote(ctx context.Context, root, rel string) ([]fileinfo.FileInfo, error) {
	dir := root
	if rel != "" {
		dir = fileinfo.JoinPath(root, rel)
	}
	entries, err := c.ReadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	var out []fileinfo.FileInfo
	for _, e := range entries {
		childRel := e.Name
		if rel != "" {
			childRel = path.Join(rel, e.Name)
		}
		if e.IsDir {
			sub, err := c.walkRemote(ctx, root, childRel)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if e.FileType == fileinfo.FileTypeSymlink {
			continue
		}
		e.RelPath = childRel
		out = append(out, e)
	}
	return out, nil
}

// hostError keeps the cause reachable so callers can test for
// fs.ErrNotExist and fs.ErrPermission.
func hostError(op, p string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return apperrors.NewPermissionError(op, p, "permission denied", err)
	}
	msg := err.Error()
	if errors.Is(err, fs.ErrNotExist) {
		msg = "no such file or directory"
	}
	return apperrors.NewHostError(op, p, strings.TrimSpace(msg), err)
}
