// Package fileinfo resolves local and smb:// paths to a provider and reads
// them. It backs the trusted shell's path-keyed I/O channel.
package fileinfo

import (
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// FileType classifies a listed entry.
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
	FileTypeHidden
)

func (t FileType) String() string {
	switch t {
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeHidden:
		return "hidden"
	}
	return "regular"
}

// FileInfo describes one entry of a shell listing.
type FileInfo struct {
	Name     string
	Path     string // display path: local path or smb://host/share/...
	RelPath  string // slash-separated, relative to the listed root
	IsDir    bool
	Size     int64
	Modified time.Time
	FileType FileType
}

// Describe builds the listing entry for fi found at display path p.
func Describe(p, rel string, fi fs.FileInfo) FileInfo {
	name := fi.Name()
	if name == "" || name == "." {
		name = BaseName(p)
	}
	return FileInfo{
		Name:     name,
		Path:     p,
		RelPath:  rel,
		IsDir:    fi.IsDir(),
		Size:     fi.Size(),
		Modified: fi.ModTime(),
		FileType: DetermineFileType(name, fi.Mode()),
	}
}

// DetermineFileType classifies an entry. Links win over directories, and
// dot-names only mark regular files hidden.
func DetermineFileType(name string, mode fs.FileMode) FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return FileTypeSymlink
	case mode.IsDir():
		return FileTypeDirectory
	case strings.HasPrefix(name, "."):
		return FileTypeHidden
	default:
		return FileTypeRegular
	}
}

var sizeUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB"}

// FormatFileSize renders size in binary units with one decimal.
func FormatFileSize(size int64) string {
	if size < 1024 {
		return strconv.FormatInt(size, 10) + " B"
	}
	v := float64(size) / 1024
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + sizeUnits[unit]
}
