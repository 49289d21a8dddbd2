package fynehost

import (
	"fyne.io/fyne/v2"

	"pickfs/internal/capability"
)

// Env probes the running Fyne device.
func Env(app fyne.App) capability.HostEnv {
	version := ""
	if app != nil {
		version = app.Metadata().Version
	}
	return EnvFor(fyne.CurrentDevice().IsBrowser(), version)
}

// EnvFor describes a Fyne host. A web build only offers one-shot dialogs;
// a desktop build runs as the trusted shell with native path dialogs.
func EnvFor(browser bool, version string) capability.HostEnv {
	if browser {
		return capability.HostEnv{
			Kind:                   capability.HostBrowser,
			ID:                     "fyne-web",
			Name:                   "Fyne (web)",
			Version:                version,
			SupportsDirectoryInput: true,
			HasKeyValueStore:       true,
		}
	}
	return capability.HostEnv{
		Kind:                         capability.HostDesktopShell,
		ID:                           "fyne",
		Name:                         "Fyne",
		Version:                      version,
		HasOpenFilePicker:            true,
		HasDirectoryPicker:           true,
		HasSaveFilePicker:            true,
		SupportsDirectoryInput:       true,
		SupportsDragAndDrop:          true,
		SupportsDirectoryDragAndDrop: true,
		HasKeyValueStore:             true,
	}
}
