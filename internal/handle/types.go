// Package handle holds the backend-agnostic representation of picked files
// and directories, the picker result model, and the converter that turns
// in-memory selections into handle-shaped values.
package handle

import (
	"context"
	"io"
)

// Kind tags a handle as a file or a directory.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Type tells whether a handle is backed by the host or by in-memory bytes.
type Type string

const (
	TypeNative   Type = "native"
	TypeFallback Type = "fallback"
)

// PermissionMode is the access level a permission query or request is for.
type PermissionMode string

const (
	ModeRead      PermissionMode = "read"
	ModeReadWrite PermissionMode = "readwrite"
)

// PermissionState is the answer to a permission query.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// Entry is the read-side contract every handle satisfies.
type Entry interface {
	Kind() Kind
	Name() string
	IsSameEntry(other Entry) bool
	QueryPermission(ctx context.Context, mode PermissionMode) (PermissionState, error)
	RequestPermission(ctx context.Context, mode PermissionMode) (PermissionState, error)
}

// FileHandle can produce the file's content.
type FileHandle interface {
	Entry
	GetFile(ctx context.Context) (*File, error)
}

// DirectoryHandle can enumerate its children.
type DirectoryHandle interface {
	Entry
	Entries() Sequence
}

// WritableFile is implemented only by handles that can write back to the host.
type WritableFile interface {
	FileHandle
	CreateWritable(ctx context.Context, keepExistingData bool) (io.WriteCloser, error)
}

// WritableDirectory is implemented only by handles that can create and
// remove children on the host.
type WritableDirectory interface {
	DirectoryHandle
	GetFileHandle(ctx context.Context, name string, create bool) (FileHandle, error)
	GetDirectoryHandle(ctx context.Context, name string, create bool) (DirectoryHandle, error)
	RemoveEntry(ctx context.Context, name string, recursive bool) error
}

// Persistable handles can be stored and reopened in a later session.
// PersistKey must be stable across sessions.
type Persistable interface {
	PersistKey() string
}
