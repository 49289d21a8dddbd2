package capability

// HostEnv is the explicit description of a host that detection runs on.
// Hosts fill it from their own probes; nothing here sniffs globals.
type HostEnv struct {
	Kind HostKind
	// ID is a stable key for per-host advice; Name is for display.
	ID      string
	Name    string
	Version string

	HasOpenFilePicker  bool
	HasDirectoryPicker bool
	HasSaveFilePicker  bool

	SupportsDirectoryInput       bool
	SupportsDragAndDrop          bool
	SupportsDirectoryDragAndDrop bool
	HasOriginPrivateStorage      bool
	HasKeyValueStore             bool
}

// HasNativePickers reports whether all three native pickers are present.
// Partial availability counts as absent.
func (e HostEnv) HasNativePickers() bool {
	return e.HasOpenFilePicker && e.HasDirectoryPicker && e.HasSaveFilePicker
}

// Detect computes the capabilities of env.
func Detect(env HostEnv) Capabilities {
	if env.Kind == HostDesktopShell {
		// the shell stores data natively, not in origin-private storage
		return Capabilities{
			HasNativeFileSystemAccess:    true,
			HasFallbackAccess:            true,
			CanPickMultipleFiles:         true,
			CanPickDirectories:           true,
			CanPersistFileHandles:        true,
			CanWriteToFiles:              true,
			SupportsDirectoryInput:       true,
			SupportsDragAndDrop:          true,
			SupportsDirectoryDragAndDrop: true,
			HasOriginPrivateStorage:      false,
			HasKeyValueStore:             true,
		}
	}

	if env.HasNativePickers() {
		return Capabilities{
			HasNativeFileSystemAccess:    true,
			HasFallbackAccess:            true,
			CanPickMultipleFiles:         true,
			CanPickDirectories:           true,
			CanPersistFileHandles:        true,
			CanWriteToFiles:              true,
			SupportsDirectoryInput:       env.SupportsDirectoryInput,
			SupportsDragAndDrop:          env.SupportsDragAndDrop,
			SupportsDirectoryDragAndDrop: env.SupportsDirectoryDragAndDrop,
			HasOriginPrivateStorage:      env.HasOriginPrivateStorage,
			HasKeyValueStore:             env.HasKeyValueStore,
		}
	}

	return Capabilities{
		HasFallbackAccess:            true,
		CanPickMultipleFiles:         true,
		CanPickDirectories:           env.SupportsDirectoryInput,
		SupportsDirectoryInput:       env.SupportsDirectoryInput,
		SupportsDragAndDrop:          env.SupportsDragAndDrop,
		SupportsDirectoryDragAndDrop: env.SupportsDirectoryDragAndDrop,
		HasOriginPrivateStorage:      env.HasOriginPrivateStorage,
		HasKeyValueStore:             env.HasKeyValueStore,
	}
}
