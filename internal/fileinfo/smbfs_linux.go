//go:build linux

package fileinfo

import (
	"bytes"
	"io"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
)

const smbDialTimeout = 5 * time.Second

// SMBFS implements VFS by talking SMB2 directly. Every call opens its own
// session; paths are relative to the share.
type SMBFS struct {
	host  string
	share string
	cred  *Credentials
}

// newSMBProvider returns the share's VFS. A nil c defers to the
// credential chain on first mount.
func newSMBProvider(host, share string, c *Credentials) VFS {
	return SMBFS{host: host, share: share, cred: c}
}

func (SMBFS) Capabilities() Capabilities { return Capabilities{FastList: false, Write: true} }

// mounted is one live session with the share mounted.
type mounted struct {
	conn  net.Conn
	sess  *smb2.Session
	share *smb2.Share
}

func (m *mounted) close() {
	m.share.Umount()
	m.sess.Logoff()
	m.conn.Close()
}

func (s SMBFS) mount(relPath string) (*mounted, error) {
	creds := Credentials{}
	if s.cred != nil {
		creds = *s.cred
	} else {
		creds = getCredentials(s.host, s.share, relPath)
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, "445"), smbDialTimeout)
	if err != nil {
		return nil, err
	}
	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     creds.Username,
			Password: creds.Password,
			Domain:   creds.Domain,
		},
	}
	sess, err := d.Dial(conn)
	if err != nil {
		conn.Close()
		s.forgetOnAuthError(err)
		return nil, err
	}
	share, err := sess.Mount(s.share)
	if err != nil {
		sess.Logoff()
		conn.Close()
		s.forgetOnAuthError(err)
		return nil, err
	}

	if creds.Persist && secretStore != nil {
		_ = secretStore.Set(s.host, s.share, creds.Domain, creds.Username, creds.Password)
	}
	return &mounted{conn: conn, sess: sess, share: share}, nil
}

func (s SMBFS) forgetOnAuthError(err error) {
	if isAuthError(err) {
		ClearCachedCredentials(s.host, s.share)
	}
}

// sharePath strips leading separators; go-smb2 rejects them. The share root
// is "".
func sharePath(p string) string {
	return strings.TrimLeft(p, `/\`)
}

func (s SMBFS) ReadDir(relPath string) ([]os.DirEntry, error) {
	m, err := s.mount(relPath)
	if err != nil {
		return nil, err
	}
	defer m.close()

	fis, err := m.share.ReadDir(sharePath(relPath))
	if err != nil {
		s.forgetOnAuthError(err)
		return nil, err
	}
	out := make([]os.DirEntry, 0, len(fis))
	for _, fi := range fis {
		if fi.Name() == "." {
			continue
		}
		out = append(out, fs.FileInfoToDirEntry(fi))
	}
	return out, nil
}

func (s SMBFS) Stat(relPath string) (os.FileInfo, error) {
	m, err := s.mount(relPath)
	if err != nil {
		return nil, err
	}
	defer m.close()

	p := sharePath(relPath)
	if p == "" {
		p = "."
	}
	fi, err := m.share.Stat(p)
	if err != nil {
		s.forgetOnAuthError(err)
		return nil, err
	}
	return fi, nil
}

// Open reads the whole file before returning so the session can be closed.
func (s SMBFS) Open(relPath string) (io.ReadCloser, error) {
	m, err := s.mount(relPath)
	if err != nil {
		return nil, err
	}
	defer m.close()

	data, err := m.share.ReadFile(sharePath(relPath))
	if err != nil {
		s.forgetOnAuthError(err)
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create buffers writes and uploads them on Close.
func (s SMBFS) Create(relPath string) (io.WriteCloser, error) {
	return &smbWriter{fs: s, path: relPath}, nil
}

type smbWriter struct {
	fs     SMBFS
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *smbWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *smbWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	m, err := w.fs.mount(w.path)
	if err != nil {
		return err
	}
	defer m.close()
	if err := m.share.WriteFile(sharePath(w.path), w.buf.Bytes(), 0o644); err != nil {
		w.fs.forgetOnAuthError(err)
		return err
	}
	return nil
}

func (s SMBFS) MkdirAll(relPath string) error {
	m, err := s.mount(relPath)
	if err != nil {
		return err
	}
	defer m.close()
	return m.share.MkdirAll(sharePath(relPath), 0o755)
}

func (s SMBFS) Remove(relPath string, recursive bool) error {
	m, err := s.mount(relPath)
	if err != nil {
		return err
	}
	defer m.close()
	if recursive {
		return m.share.RemoveAll(sharePath(relPath))
	}
	return m.share.Remove(sharePath(relPath))
}

func (SMBFS) Join(elem ...string) string { return "/" + strings.TrimLeft(strings.Join(elem, "/"), "/") }

func (SMBFS) Base(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	for _, marker := range []string{
		"logon is invalid",
		"bad username",
		"authentication",
		"status_logon_failure",
		"access is denied",
	} {
		if strings.Contains(e, marker) {
			return true
		}
	}
	return false
}
