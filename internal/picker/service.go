// Package picker is the selection facade: it detects the host once, picks
// the adapter that fits it and answers capability questions for the UI.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"pickfs/internal/adapter"
	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
	"pickfs/internal/logging"
	"pickfs/internal/store"
)

// Options configures NewService.
type Options struct {
	// Kind tags the application host. DesktopShell always reports full
	// capability, whichever adapter runs underneath.
	Kind capability.HostKind
	// Env describes the rendering engine's own primitives.
	Env capability.HostEnv

	Native adapter.NativeHost // used when Env has all native pickers
	Input  adapter.InputHost  // used otherwise
	// Resolver reopens stored handles. Defaults to Native when it
	// implements adapter.HandleResolver.
	Resolver adapter.HandleResolver

	Store  *store.Store // nil keeps remembered handles in memory
	Logger *zap.Logger
}

// Service chooses one adapter at construction and delegates to it. The
// adapter is never replaced afterwards.
type Service struct {
	kind     capability.HostKind
	env      capability.HostEnv
	adapter  adapter.Adapter
	fallback bool
	resolver adapter.HandleResolver
	store    *store.Store
	log      *zap.Logger
}

var _ adapter.Adapter = (*Service)(nil)

// NewService detects the engine's capabilities and builds the matching
// adapter: native pickers present means the full adapter, anything else
// the restricted one.
func NewService(opts Options) (*Service, error) {
	log := logging.OrNop(opts.Logger).Named("picker")

	engine := opts.Env
	engine.Kind = capability.HostBrowser
	caps := capability.Detect(engine)

	s := &Service{
		kind:     opts.Kind,
		env:      opts.Env,
		resolver: opts.Resolver,
		store:    opts.Store,
		log:      log,
	}
	s.env.Kind = opts.Kind

	switch {
	case opts.Env.HasNativePickers() && opts.Native != nil:
		s.adapter = adapter.NewFullAdapter(opts.Native, caps, log)
		if s.resolver == nil {
			s.resolver, _ = opts.Native.(adapter.HandleResolver)
		}
	case opts.Input != nil:
		s.adapter = adapter.NewRestrictedAdapter(opts.Input, caps, log)
		s.fallback = true
	default:
		return nil, apperrors.NewConfigError("new_service", "no usable picker host: native pickers are unavailable and no input host was given", nil)
	}
	if s.store == nil {
		s.store = store.NewMemory(store.DefaultSize)
	}

	log.Info("picker service ready",
		zap.Stringer("host", opts.Kind),
		zap.Bool("fallback", s.fallback),
		zap.String("level", string(s.Capabilities().Level())))
	return s, nil
}

// Kind returns the host tag the service was built for.
func (s *Service) Kind() capability.HostKind { return s.kind }

// Adapter returns the adapter chosen at construction.
func (s *Service) Adapter() adapter.Adapter { return s.adapter }

// Capabilities reports what the application can do. On the desktop shell
// this is always the full set.
func (s *Service) Capabilities() capability.Capabilities {
	if s.kind == capability.HostDesktopShell {
		return capability.Detect(capability.HostEnv{Kind: capability.HostDesktopShell})
	}
	return s.adapter.Capabilities()
}

// BrowserInfo describes the host for compatibility banners.
func (s *Service) BrowserInfo() capability.BrowserInfo {
	return capability.Describe(s.env, s.Capabilities())
}

func (s *Service) Level() capability.Level { return s.Capabilities().Level() }

func (s *Service) ShouldShowCompatibilityWarning() bool {
	return s.Level() != capability.LevelFull
}

func (s *Service) Recommendations() []string { return s.BrowserInfo().Recommendations }

func (s *Service) CanAccessDirectories() bool { return s.Capabilities().CanPickDirectories }
func (s *Service) CanWriteBack() bool         { return s.Capabilities().CanWriteToFiles }
func (s *Service) CanPersistHandles() bool    { return s.Capabilities().CanPersistFileHandles }

// IsFallbackMode reports whether picks go through the restricted adapter.
func (s *Service) IsFallbackMode() bool { return s.fallback }

func (s *Service) PickFiles(ctx context.Context, opts adapter.FilePickOptions) handle.PickerResult {
	return s.adapter.PickFiles(ctx, opts)
}

func (s *Service) PickDirectory(ctx context.Context, opts adapter.DirectoryPickOptions) handle.PickerResult {
	return s.adapter.PickDirectory(ctx, opts)
}

func (s *Service) SaveFile(ctx context.Context, opts adapter.SaveFileOptions, data []byte) handle.PickerResult {
	return s.adapter.SaveFile(ctx, opts, data)
}

func (s *Service) QueryPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) handle.PermissionState {
	return s.adapter.QueryPermission(ctx, h, mode)
}

func (s *Service) RequestPermission(ctx context.Context, h *handle.Handle, mode handle.PermissionMode) bool {
	return s.adapter.RequestPermission(ctx, h, mode)
}

func (s *Service) PickFilesLegacy(ctx context.Context, opts adapter.FilePickOptions) []*handle.Handle {
	return s.adapter.PickFilesLegacy(ctx, opts)
}

func (s *Service) PickDirectoryLegacy(ctx context.Context, opts adapter.DirectoryPickOptions) *handle.Handle {
	return s.adapter.PickDirectoryLegacy(ctx, opts)
}

// Remember stores a native handle so it can be restored in a later session.
// Fallback handles are rejected with a capability error.
func (s *Service) Remember(a handle.AppHandle) (store.Record, error) {
	return s.store.Put(a)
}

// Recent lists remembered handles, most recently used first.
func (s *Service) Recent() []store.Record { return s.store.Recent() }

// Forget drops a remembered handle.
func (s *Service) Forget(id string) error {
	_, err := s.store.Remove(id)
	return err
}

// Restore reopens a remembered handle and re-requests permission for mode.
// A handle whose target no longer exists is forgotten; any other failure
// leaves the record in place so the caller can retry.
func (s *Service) Restore(ctx context.Context, id string, mode handle.PermissionMode) (handle.AppHandle, error) {
	rec, live, ok := s.store.Get(id)
	if !ok {
		return handle.AppHandle{}, apperrors.NewStoreError("restore", fmt.Sprintf("no remembered handle %q", id), nil)
	}

	if live == nil {
		if s.resolver == nil {
			return handle.AppHandle{}, apperrors.NewCapabilityError("restore", rec.Name,
				"reopening handles is not supported in this environment")
		}
		var err error
		live, err = s.resolver.Reopen(ctx, rec.Key, rec.Kind)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.log.Info("remembered handle is gone, forgetting it", zap.String("name", rec.Name))
				if _, rmErr := s.store.Remove(id); rmErr != nil {
					s.log.Warn("forgetting handle failed", zap.Error(rmErr))
				}
			}
			return handle.AppHandle{}, apperrors.NewHostError("restore", rec.Name, apperrors.Message(err), err)
		}
		s.store.Attach(id, live)
	}

	if !s.RequestPermission(ctx, handle.LegacyFromEntry(live, true), mode) {
		return handle.AppHandle{}, apperrors.NewPermissionError("restore", rec.Name,
			fmt.Sprintf("%s access was not granted", mode), nil)
	}
	s.log.Debug("handle restored", zap.String("name", rec.Name))
	return handle.AppHandle{ID: rec.ID, Type: handle.TypeNative, Kind: live.Kind(), Name: live.Name(), Native: live}, nil
}
