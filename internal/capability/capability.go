// Package capability describes what a host environment can do with files and
// folders, and summarises it as a coarse compatibility level.
package capability

import (
	"fmt"
	"strings"
)

// HostKind identifies the environment the application runs in.
type HostKind int

const (
	HostBrowser HostKind = iota
	HostDesktopShell
)

func (k HostKind) String() string {
	switch k {
	case HostBrowser:
		return "browser"
	case HostDesktopShell:
		return "shell"
	default:
		return "unknown"
	}
}

// ParseHostKind accepts "browser" or "shell" (case-insensitive). An empty
// string means browser.
func ParseHostKind(s string) (HostKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "browser":
		return HostBrowser, nil
	case "shell", "desktop", "desktop-shell":
		return HostDesktopShell, nil
	default:
		return HostBrowser, fmt.Errorf("unknown host kind %q", s)
	}
}

// Level is a three-tier summary of picker and persistence support.
type Level string

const (
	LevelFull    Level = "full"
	LevelBasic   Level = "basic"
	LevelLimited Level = "limited"
)

// Capabilities is computed once per host and never mutated.
type Capabilities struct {
	HasNativeFileSystemAccess    bool `json:"hasNativeFileSystemAccess"`
	HasFallbackAccess            bool `json:"hasFallbackAccess"`
	CanPickMultipleFiles         bool `json:"canPickMultipleFiles"`
	CanPickDirectories           bool `json:"canPickDirectories"`
	CanPersistFileHandles        bool `json:"canPersistFileHandles"`
	CanWriteToFiles              bool `json:"canWriteToFiles"`
	SupportsDirectoryInput       bool `json:"supportsDirectoryInput"`
	SupportsDragAndDrop          bool `json:"supportsDragAndDrop"`
	SupportsDirectoryDragAndDrop bool `json:"supportsDirectoryDragAndDrop"`
	HasOriginPrivateStorage      bool `json:"hasOriginPrivateStorage"`
	HasKeyValueStore             bool `json:"hasKeyValueStore"`
}

// Valid checks the implication chain write-back ⇒ persistence ⇒ native access.
func (c Capabilities) Valid() error {
	if c.CanPersistFileHandles && !c.HasNativeFileSystemAccess {
		return fmt.Errorf("handle persistence requires native file system access")
	}
	if c.CanWriteToFiles && !c.CanPersistFileHandles {
		return fmt.Errorf("write-back requires handle persistence")
	}
	return nil
}

// Level derives the compatibility level.
func (c Capabilities) Level() Level {
	switch {
	case c.HasNativeFileSystemAccess && c.CanPersistFileHandles && c.CanWriteToFiles:
		return LevelFull
	case c.SupportsDirectoryInput:
		return LevelBasic
	default:
		return LevelLimited
	}
}
