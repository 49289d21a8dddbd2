package handle

import (
	"context"
	"fmt"
)

// Handle is the older handle shape, kept for code that has not moved to
// AppHandle yet.
type Handle struct {
	Kind   Kind
	Name   string
	Native Entry // nil when the handle has no host backing

	getFile func(ctx context.Context) (*File, error)
	entries Sequence
	source  Entry
}

// NewLegacyFile builds a file Handle with a deferred content accessor.
func NewLegacyFile(name string, native Entry, getFile func(ctx context.Context) (*File, error)) *Handle {
	return &Handle{Kind: KindFile, Name: name, Native: native, getFile: getFile}
}

// NewLegacyDirectory builds a directory Handle over entries.
func NewLegacyDirectory(name string, native Entry, entries Sequence) *Handle {
	return &Handle{Kind: KindDirectory, Name: name, Native: native, entries: entries}
}

// LegacyFromEntry wraps any handle in the legacy shape. Entries without a
// host backing are not recorded as Native.
func LegacyFromEntry(e Entry, native bool) *Handle {
	var backing Entry
	if native {
		backing = e
	}
	var out *Handle
	switch h := e.(type) {
	case FileHandle:
		out = NewLegacyFile(h.Name(), backing, h.GetFile)
	case DirectoryHandle:
		out = NewLegacyDirectory(h.Name(), backing, h.Entries())
	default:
		out = &Handle{Kind: e.Kind(), Name: e.Name(), Native: backing}
	}
	out.source = e
	return out
}

// GetFile returns the file content accessor result.
func (h *Handle) GetFile(ctx context.Context) (*File, error) {
	if h.Kind != KindFile || h.getFile == nil {
		return nil, fmt.Errorf("%q is not a file", h.Name)
	}
	return h.getFile(ctx)
}

// Entries lists a directory handle's children; empty for files.
func (h *Handle) Entries() Sequence {
	if h.Kind != KindDirectory {
		return FiniteSequence(nil)
	}
	return h.entries
}
