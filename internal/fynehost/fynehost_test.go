package fynehost

import (
	"testing"

	"fyne.io/fyne/v2/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickfs/internal/capability"
)

func TestEnvFor(t *testing.T) {
	desktop := EnvFor(false, "1.2.0")
	assert.Equal(t, capability.HostDesktopShell, desktop.Kind)
	assert.True(t, desktop.HasNativePickers())
	assert.Equal(t, "1.2.0", desktop.Version)
	assert.True(t, capability.Detect(desktop).CanWriteToFiles)

	web := EnvFor(true, "")
	assert.Equal(t, capability.HostBrowser, web.Kind)
	assert.False(t, web.HasNativePickers())
	caps := capability.Detect(web)
	assert.False(t, caps.HasNativeFileSystemAccess)
	assert.True(t, caps.CanPickDirectories, "directory input is available on the web build")
}

func TestEnvFor_WebRecommendations(t *testing.T) {
	web := EnvFor(true, "1")
	info := capability.Describe(web, capability.Detect(web))
	assert.Equal(t, "Fyne (web)", info.Name)
	assert.Equal(t, capability.LevelBasic, info.Level)
	require.Len(t, info.Recommendations, 1)
	assert.Contains(t, info.Recommendations[0], "desktop build")

	desktop := EnvFor(false, "1")
	assert.Empty(t, capability.Describe(desktop, capability.Detect(desktop)).Recommendations)
}

func TestFileFilter(t *testing.T) {
	assert.Nil(t, fileFilter(nil))
	assert.Nil(t, fileFilter([]string{""}))

	f := fileFilter([]string{".csv", "text/csv"})
	require.NotNil(t, f)
	_, ok := f.(*storage.ExtensionFileFilter)
	assert.True(t, ok, "extensions take precedence")
	assert.True(t, f.Matches(storage.NewFileURI("/data/sales.csv")))
	assert.False(t, f.Matches(storage.NewFileURI("/data/notes.txt")))

	_, ok = fileFilter([]string{"text/*"}).(*storage.MimeTypeFileFilter)
	assert.True(t, ok)
}
