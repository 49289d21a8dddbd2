package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nativeEnv() HostEnv {
	return HostEnv{
		Name:               "chrome",
		Version:            "126",
		HasOpenFilePicker:  true,
		HasDirectoryPicker: true,
		HasSaveFilePicker:  true,
	}
}

func TestDetect_Scenarios(t *testing.T) {
	testCases := []struct {
		name          string
		env           HostEnv
		level         Level
		native        bool
		directories   bool
		persist       bool
		write         bool
		originPrivate bool
	}{
		{"native browser", nativeEnv(), LevelFull, true, true, true, true, false},
		{"partial native counts as absent", HostEnv{HasOpenFilePicker: true, HasDirectoryPicker: true}, LevelLimited, false, false, false, false, false},
		{"directory input only", HostEnv{Name: "firefox", SupportsDirectoryInput: true}, LevelBasic, false, true, false, false, false},
		{"nothing", HostEnv{Name: "safari"}, LevelLimited, false, false, false, false, false},
		{"desktop shell", HostEnv{Kind: HostDesktopShell}, LevelFull, true, true, true, true, false},
		{"desktop shell ignores origin storage probe", HostEnv{Kind: HostDesktopShell, HasOriginPrivateStorage: true}, LevelFull, true, true, true, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caps := Detect(tc.env)
			require.NoError(t, caps.Valid())
			assert.Equal(t, tc.level, caps.Level())
			assert.Equal(t, tc.native, caps.HasNativeFileSystemAccess)
			assert.Equal(t, tc.directories, caps.CanPickDirectories)
			assert.Equal(t, tc.persist, caps.CanPersistFileHandles)
			assert.Equal(t, tc.write, caps.CanWriteToFiles)
			assert.Equal(t, tc.originPrivate, caps.HasOriginPrivateStorage)
			assert.True(t, caps.HasFallbackAccess)
		})
	}
}

func TestLevelFullImpliesPersistence(t *testing.T) {
	// every combination of the eight probe flags, for both host kinds
	for mask := 0; mask < 1<<8; mask++ {
		for _, kind := range []HostKind{HostBrowser, HostDesktopShell} {
			env := HostEnv{
				Kind:                         kind,
				HasOpenFilePicker:            mask&1 != 0,
				HasDirectoryPicker:           mask&2 != 0,
				HasSaveFilePicker:            mask&4 != 0,
				SupportsDirectoryInput:       mask&8 != 0,
				SupportsDragAndDrop:          mask&16 != 0,
				SupportsDirectoryDragAndDrop: mask&32 != 0,
				HasOriginPrivateStorage:      mask&64 != 0,
				HasKeyValueStore:             mask&128 != 0,
			}
			caps := Detect(env)
			require.NoError(t, caps.Valid(), "mask=%d kind=%s", mask, kind)
			if caps.Level() == LevelFull {
				require.True(t, caps.CanPersistFileHandles, "mask=%d kind=%s", mask, kind)
			}
		}
	}
}

func TestValid(t *testing.T) {
	assert.Error(t, Capabilities{CanPersistFileHandles: true}.Valid())
	assert.Error(t, Capabilities{HasNativeFileSystemAccess: true, CanWriteToFiles: true}.Valid())
	assert.NoError(t, Capabilities{}.Valid())
}

func TestParseHostKind(t *testing.T) {
	k, err := ParseHostKind("Shell")
	require.NoError(t, err)
	assert.Equal(t, HostDesktopShell, k)

	k, err = ParseHostKind("")
	require.NoError(t, err)
	assert.Equal(t, HostBrowser, k)

	_, err = ParseHostKind("toaster")
	assert.Error(t, err)
	assert.Equal(t, "unknown", HostKind(7).String())
}

func TestDescribe(t *testing.T) {
	env := HostEnv{Name: "Firefox", Version: "128", SupportsDirectoryInput: true}
	info := Describe(env, Detect(env))

	assert.Equal(t, "Firefox", info.Name)
	assert.Equal(t, "128", info.Version)
	assert.Equal(t, LevelBasic, info.Level)
	assert.NotEmpty(t, info.Limitations)
	assert.Equal(t, recommendationsByHost["firefox"], info.Recommendations)

	full := Describe(nativeEnv(), Detect(nativeEnv()))
	assert.Empty(t, full.Limitations)
	assert.Empty(t, full.Recommendations)

	shell := Describe(HostEnv{Kind: HostDesktopShell}, Detect(HostEnv{Kind: HostDesktopShell}))
	assert.Equal(t, "desktop", shell.Name)
}

func TestDescribe_RecommendationsKeyedByID(t *testing.T) {
	env := HostEnv{ID: "fyne-web", Name: "Fyne (web)", SupportsDirectoryInput: true}
	info := Describe(env, Detect(env))
	assert.Equal(t, "Fyne (web)", info.Name)
	assert.Equal(t, recommendationsByHost["fyne-web"], info.Recommendations)

	unknown := HostEnv{ID: "netsurf", Name: "Firefox"}
	assert.Equal(t, defaultRecommendations, Describe(unknown, Detect(unknown)).Recommendations,
		"the ID wins over the display name")
}

func TestRecommendations_DefaultForUnknownHost(t *testing.T) {
	recs := Recommendations("netsurf", LevelLimited)
	assert.Equal(t, defaultRecommendations, recs)

	// callers may modify the returned slice
	recs[0] = "changed"
	assert.NotEqual(t, "changed", defaultRecommendations[0])
}
