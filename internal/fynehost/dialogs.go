// Package fynehost provides the picker host primitives on top of Fyne
// dialogs: path dialogs for the desktop shell, a one-shot input control for
// restricted hosts, and the environment probe both are chosen from.
package fynehost

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"go.uber.org/zap"

	"pickfs/internal/adapter"
	"pickfs/internal/logging"
)

// hider is the part of a Fyne dialog needed to tear it down.
type hider interface{ Hide() }

type outcome[T any] struct {
	v   T
	err error
}

// show opens a dialog on the UI thread and blocks until it resolves or ctx
// is done. open must call resolve exactly once from the dialog callback.
func show[T any](ctx context.Context, open func(resolve func(T, error)) hider) (T, error) {
	ch := make(chan outcome[T], 1)
	var once sync.Once
	resolve := func(v T, err error) {
		once.Do(func() { ch <- outcome[T]{v, err} })
	}

	var d hider
	fyne.Do(func() { d = open(resolve) })

	select {
	case o := <-ch:
		return o.v, o.err
	case <-ctx.Done():
		fyne.Do(func() {
			if d != nil {
				d.Hide()
			}
		})
		var zero T
		return zero, ctx.Err()
	}
}

// Dialogs shows Fyne file dialogs and returns the chosen paths. It
// implements shell.PathPicker.
type Dialogs struct {
	parent fyne.Window
	log    *zap.Logger
}

// NewDialogs creates path dialogs attached to parent.
func NewDialogs(parent fyne.Window, log *zap.Logger) *Dialogs {
	return &Dialogs{parent: parent, log: logging.OrNop(log).Named("fynehost")}
}

func aborted(op string) error { return fmt.Errorf("%s: %w", op, adapter.ErrUserAbort) }

// PickFilePaths shows an open dialog. Fyne dialogs select one file, so
// multiple only widens what the caller accepts.
func (d *Dialogs) PickFilePaths(ctx context.Context, extensions []string, multiple bool) ([]string, error) {
	uri, err := show(ctx, func(resolve func(fyne.URI, error)) hider {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				resolve(nil, err)
				return
			}
			u := rc.URI()
			_ = rc.Close()
			resolve(u, nil)
		}, d.parent)
		if f := fileFilter(extensions); f != nil {
			fd.SetFilter(f)
		}
		fd.Show()
		return fd
	})
	if err != nil {
		return nil, err
	}
	if uri == nil {
		d.log.Debug("open dialog dismissed")
		return nil, aborted("pick_file_paths")
	}
	d.log.Debug("file chosen", zap.String("uri", uri.String()), zap.Bool("multiple", multiple))
	return []string{uri.Path()}, nil
}

// PickDirectoryPath shows a folder dialog.
func (d *Dialogs) PickDirectoryPath(ctx context.Context) (string, error) {
	uri, err := show(ctx, func(resolve func(fyne.ListableURI, error)) hider {
		fd := dialog.NewFolderOpen(resolve, d.parent)
		fd.Show()
		return fd
	})
	if err != nil {
		return "", err
	}
	if uri == nil {
		d.log.Debug("folder dialog dismissed")
		return "", aborted("pick_directory_path")
	}
	return uri.Path(), nil
}

// PickSavePath shows a save dialog. The dialog creates the target file;
// callers replace its content afterwards.
func (d *Dialogs) PickSavePath(ctx context.Context, suggestedName string, extensions []string) (string, error) {
	uri, err := show(ctx, func(resolve func(fyne.URI, error)) hider {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				resolve(nil, err)
				return
			}
			u := wc.URI()
			_ = wc.Close()
			resolve(u, nil)
		}, d.parent)
		if suggestedName != "" {
			fd.SetFileName(suggestedName)
		}
		if f := fileFilter(extensions); f != nil {
			fd.SetFilter(f)
		}
		fd.Show()
		return fd
	})
	if err != nil {
		return "", err
	}
	if uri == nil {
		d.log.Debug("save dialog dismissed")
		return "", aborted("pick_save_path")
	}
	return uri.Path(), nil
}

// fileFilter builds a dialog filter from accept tokens. Extensions win
// over MIME types when both are present; nil means no filter.
func fileFilter(accept []string) storage.FileFilter {
	var exts, mimes []string
	for _, a := range accept {
		switch {
		case a == "":
		case a[0] == '.':
			exts = append(exts, a)
		default:
			mimes = append(mimes, a)
		}
	}
	switch {
	case len(exts) > 0:
		return storage.NewExtensionFileFilter(exts)
	case len(mimes) > 0:
		return storage.NewMimeTypeFileFilter(mimes)
	}
	return nil
}
