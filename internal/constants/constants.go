package constants

// Application constants
const (
	ApplicationName  = "pickfs"
	ApplicationID    = "io.github.pickfs"
	ApplicationTitle = "File Picker"
)

// UI constants
const (
	// Window dimensions
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600

	// Dialog dimensions
	LoginDialogWidth  = 420
	LoginDialogHeight = 200

	// Number of file names previewed per pick
	PreviewLimit = 20
)

// Banner colors (RGBA values)
var (
	BannerWarningColor = [4]uint8{255, 200, 0, 80} // Semi-transparent orange
	BannerInfoColor    = [4]uint8{100, 150, 200, 100}
)

// Configuration constants
const (
	ConfigFileName = "config.json"
	StoreFileName  = "handles.json"
)
