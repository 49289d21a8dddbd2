package capability

import "strings"

// BrowserInfo is what compatibility banners display.
type BrowserInfo struct {
	Name            string       `json:"name"`
	Version         string       `json:"version"`
	Level           Level        `json:"level"`
	Limitations     []string     `json:"limitations"`
	Recommendations []string     `json:"recommendations"`
	Capabilities    Capabilities `json:"capabilities"`
}

// Describe builds the BrowserInfo for env given its capabilities.
func Describe(env HostEnv, caps Capabilities) BrowserInfo {
	level := caps.Level()
	return BrowserInfo{
		Name:            hostName(env),
		Version:         env.Version,
		Level:           level,
		Limitations:     Limitations(caps),
		Recommendations: Recommendations(hostID(env), level),
		Capabilities:    caps,
	}
}

// Limitations lists user-facing consequences of the missing capabilities.
func Limitations(caps Capabilities) []string {
	var out []string
	if !caps.HasNativeFileSystemAccess {
		out = append(out, "Picked files cannot be reopened after a reload; pick them again each session")
	}
	if !caps.CanWriteToFiles {
		out = append(out, "Changes cannot be saved back to the original files")
	}
	if !caps.CanPickDirectories {
		out = append(out, "Folders cannot be selected; pick individual files or an archive instead")
	} else if !caps.HasNativeFileSystemAccess {
		out = append(out, "Selected folders are read as a one-time snapshot")
	}
	if caps.SupportsDragAndDrop && !caps.SupportsDirectoryDragAndDrop {
		out = append(out, "Folders cannot be dropped onto the window")
	}
	return out
}

var recommendationsByHost = map[string][]string{
	"firefox": {
		"Firefox does not support persistent file access. Use Chrome or Edge to reopen files and save changes.",
		"Folder selection works, but the folder has to be picked again after each reload.",
	},
	"safari": {
		"Safari supports only one-time file selection. Use Chrome or Edge for folder access and saving.",
		"Upload a zip archive to load several files at once.",
	},
	"fyne-web": {
		"The web build cannot keep file access between sessions. Use the desktop build for full access.",
	},
}

var defaultRecommendations = []string{
	"Use a Chromium-based browser (Chrome, Edge) or the desktop app for full file system access.",
}

// Recommendations returns static advice keyed by host ID or name. Hosts at the full
// level get none.
func Recommendations(name string, level Level) []string {
	if level == LevelFull {
		return nil
	}
	if recs, ok := recommendationsByHost[strings.ToLower(name)]; ok {
		return append([]string(nil), recs...)
	}
	return append([]string(nil), defaultRecommendations...)
}

func hostID(env HostEnv) string {
	if env.ID != "" {
		return env.ID
	}
	return hostName(env)
}

func hostName(env HostEnv) string {
	if env.Name != "" {
		return env.Name
	}
	if env.Kind == HostDesktopShell {
		return "desktop"
	}
	return "unknown"
}
