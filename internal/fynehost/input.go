package fynehost

import (
	"context"
	"errors"
	"io"
	"path"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"go.uber.org/zap"

	"pickfs/internal/adapter"
	"pickfs/internal/handle"
	"pickfs/internal/logging"
)

// InputHost creates one-shot input controls backed by Fyne dialogs. It
// implements adapter.InputHost for hosts without native handle pickers.
type InputHost struct {
	parent fyne.Window
	log    *zap.Logger
}

// NewInputHost creates an input host attached to parent.
func NewInputHost(parent fyne.Window, log *zap.Logger) *InputHost {
	return &InputHost{parent: parent, log: logging.OrNop(log).Named("fynehost.input")}
}

// CreateInput returns a control that shows its dialog on Await.
func (h *InputHost) CreateInput(cfg adapter.InputConfig) adapter.InputControl {
	return &inputControl{host: h, cfg: cfg, removed: make(chan struct{})}
}

type inputControl struct {
	host    *InputHost
	cfg     adapter.InputConfig
	once    sync.Once
	removed chan struct{}
}

func (c *inputControl) Remove() {
	c.once.Do(func() { close(c.removed) })
}

// Await shows the dialog and reads the chosen content into memory.
func (c *inputControl) Await(ctx context.Context) ([]*handle.File, error) {
	actx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.removed:
			cancel()
		case <-actx.Done():
		}
	}()

	var files []*handle.File
	var err error
	if c.cfg.Directory {
		files, err = c.awaitDirectory(actx)
	} else {
		files, err = c.awaitFile(actx)
	}
	if err != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
		// removed while showing: a dismissal
		return nil, nil
	}
	return files, err
}

func (c *inputControl) awaitFile(ctx context.Context) ([]*handle.File, error) {
	rc, err := show(ctx, func(resolve func(fyne.URIReadCloser, error)) hider {
		fd := dialog.NewFileOpen(resolve, c.host.parent)
		if f := fileFilter(c.cfg.Accept); f != nil {
			fd.SetFilter(f)
		}
		fd.Show()
		return fd
	})
	if err != nil || rc == nil {
		return nil, err
	}
	f, err := readURI(rc, "")
	if err != nil {
		return nil, err
	}
	c.host.log.Debug("input file read", zap.String("name", f.Name), zap.Int64("size", f.Size))
	return []*handle.File{f}, nil
}

func (c *inputControl) awaitDirectory(ctx context.Context) ([]*handle.File, error) {
	root, err := show(ctx, func(resolve func(fyne.ListableURI, error)) hider {
		fd := dialog.NewFolderOpen(resolve, c.host.parent)
		fd.Show()
		return fd
	})
	if err != nil || root == nil {
		return nil, err
	}
	var files []*handle.File
	if err := collect(ctx, root, root.Name(), &files); err != nil {
		return nil, err
	}
	c.host.log.Debug("input directory read", zap.String("name", root.Name()), zap.Int("files", len(files)))
	return files, nil
}

// collect flattens the tree under dir into files whose relative paths
// start with the picked directory's name.
func collect(ctx context.Context, dir fyne.ListableURI, rel string, files *[]*handle.File) error {
	children, err := dir.List()
	if err != nil {
		return err
	}
	for _, u := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		childRel := path.Join(rel, u.Name())
		if ok, _ := storage.CanList(u); ok {
			sub, err := storage.ListerForURI(u)
			if err != nil {
				return err
			}
			if err := collect(ctx, sub, childRel, files); err != nil {
				return err
			}
			continue
		}
		rc, err := storage.Reader(u)
		if err != nil {
			return err
		}
		f, err := readURI(rc, childRel)
		if err != nil {
			return err
		}
		*files = append(*files, f)
	}
	return nil
}

func readURI(rc fyne.URIReadCloser, rel string) (*handle.File, error) {
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return handle.NewMemFile(rc.URI().Name(), rel, data, time.Time{}), nil
}
