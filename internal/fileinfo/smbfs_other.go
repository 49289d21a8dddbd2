//go:build !linux

package fileinfo

// newSMBProvider has no direct SMB client off Linux. Windows never gets here
// (Resolve maps smb:// to UNC first), and elsewhere only shares the OS has
// mounted are readable.
func newSMBProvider(_, _ string, _ *Credentials) VFS {
	return LocalFS{}
}
