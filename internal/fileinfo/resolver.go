package fileinfo

import (
	"bufio"
	"errors"
	"os"
	"path"
	"runtime"
	"strings"
)

// Scheme is the logical protocol of a path.
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeSMB  Scheme = "smb"
)

// ErrUnsupportedSMB is returned for smb paths that name no host and share.
var ErrUnsupportedSMB = errors.New("smb paths need a host and a share")

// mountInfoPath is where CIFS mounts are discovered. Tests override it.
var mountInfoPath = "/proc/self/mountinfo"

// Parsed is a normalized view of an input path.
// Display is canonical (smb://host/share/seg...); Native is what the
// provider is called with.
type Parsed struct {
	Scheme   Scheme
	Host     string
	Share    string
	Segments []string
	Raw      string
	Display  string
	Native   string
	Provider string // "local" | "smb"
	User     string
	Password string
	Domain   string
}

func localParsed(input string) Parsed {
	return Parsed{Raw: input, Scheme: SchemeFile, Display: input, Native: input, Provider: "local"}
}

// ResolveRead maps input to the provider that serves it and the native path
// to call it with.
//
// Local paths go to LocalFS. smb:// and //host/share paths go to LocalFS
// when the share is already mounted (CIFS mount on Linux, UNC on Windows)
// and to the direct SMB provider otherwise. Credentials embedded in the URL
// are handed to the provider.
func ResolveRead(input string) (VFS, Parsed, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return LocalFS{}, localParsed(input), nil
	}

	if runtime.GOOS == "windows" {
		switch {
		case isUNC(raw):
			p := parseUNC(raw)
			p.Raw, p.Provider = input, "local"
			return LocalFS{}, p, nil
		case isSMBURL(raw):
			p := parseUNC(smbURLToUNC(raw))
			p.Raw, p.Provider = input, "local"
			return LocalFS{}, p, nil
		}
		return LocalFS{}, localParsed(input), nil
	}

	if !isSMBURL(raw) && !strings.HasPrefix(raw, "//") {
		return LocalFS{}, localParsed(input), nil
	}

	host, share, segs, user, pass, domain := parseSMBURL(raw)
	if host == "" || share == "" {
		return nil, Parsed{Raw: input, Scheme: SchemeSMB, Display: canonicalizeSMB(raw), Provider: "smb"}, ErrUnsupportedSMB
	}
	p := Parsed{
		Scheme:   SchemeSMB,
		Host:     host,
		Share:    share,
		Segments: segs,
		Raw:      input,
		Display:  smbDisplay(host, share, segs),
		User:     user,
		Password: pass,
		Domain:   domain,
	}

	if mp, ok := findSMBMount(host, share); ok {
		p.Native = mp
		if len(segs) > 0 {
			p.Native = "/" + path.Join(strings.TrimPrefix(mp, "/"), path.Join(segs...))
		}
		p.Provider = "local"
		return LocalFS{}, p, nil
	}

	p.Native = "/" + path.Join(segs...)
	p.Provider = "smb"
	var cred *Credentials
	if user != "" || pass != "" || domain != "" {
		cred = &Credentials{Domain: domain, Username: user, Password: pass}
	}
	return newSMBProvider(host, share, cred), p, nil
}

// NormalizeInputPath converts smb:// to UNC on Windows and returns input
// unchanged elsewhere.
func NormalizeInputPath(input string) string {
	if runtime.GOOS == "windows" && isSMBURL(input) {
		return smbURLToUNC(input)
	}
	return input
}

func smbDisplay(host, share string, segs []string) string {
	disp := canonicalizeSMB("smb://" + path.Join(host, share))
	if len(segs) > 0 {
		disp += "/" + path.Join(segs...)
	}
	return disp
}

func isUNC(p string) bool {
	return strings.HasPrefix(p, `\\`)
}

func isSMBURL(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), "smb://")
}

// smbURLToUNC drops credentials: smb://[cred@]host/share/a -> \\host\share\a
func smbURLToUNC(u string) string {
	s := strings.TrimPrefix(strings.ToLower(u), "smb://")
	if at := strings.Index(s, "@"); at >= 0 {
		s = s[at+1:]
	}
	parts := strings.Split(s, "/")
	if parts[0] == "" {
		return `\\`
	}
	var b strings.Builder
	b.WriteString(`\\`)
	b.WriteString(parts[0])
	for _, seg := range parts[1:] {
		b.WriteString(`\`)
		b.WriteString(seg)
	}
	return b.String()
}

// parseUNC accepts \\host\share\... and \\?\UNC\host\share\...
func parseUNC(unc string) Parsed {
	u := unc
	if strings.HasPrefix(u, `\\?\UNC\`) {
		u = strings.TrimPrefix(u, `\\?\UNC\`)
	} else {
		u = strings.TrimPrefix(u, `\\`)
	}
	seg := strings.Split(u, `\`)
	var host, share string
	var segments []string
	if len(seg) > 0 {
		host = seg[0]
	}
	if len(seg) > 1 {
		share = seg[1]
	}
	if len(seg) > 2 {
		segments = seg[2:]
	}
	return Parsed{
		Scheme:   SchemeSMB,
		Host:     host,
		Share:    share,
		Segments: segments,
		Raw:      unc,
		Display:  "smb://" + path.Join(append([]string{host, share}, segments...)...),
		Native:   unc,
	}
}

func canonicalizeSMB(url string) string {
	s := strings.ReplaceAll(strings.TrimSpace(url), `\`, "/")
	if !isSMBURL(s) {
		s = "smb://" + strings.TrimPrefix(s, "//")
	}
	return s
}

// parseSMBURL splits smb://[domain;user:pass@]host/share/... and
// //host/share/... (domain may also be given as domain\user).
func parseSMBURL(u string) (host, share string, segments []string, user, pass, domain string) {
	s := strings.TrimSpace(u)
	if strings.HasPrefix(s, "//") {
		s = "smb:" + s
	}
	if !isSMBURL(s) {
		return
	}
	t := s[len("smb://"):]
	if at := strings.Index(t, "@"); at >= 0 {
		cred := t[:at]
		t = t[at+1:]
		if colon := strings.Index(cred, ":"); colon >= 0 {
			pass = cred[colon+1:]
			cred = cred[:colon]
		}
		if i := strings.IndexAny(cred, `;\`); i >= 0 {
			domain, user = cred[:i], cred[i+1:]
		} else {
			user = cred
		}
	}
	parts := strings.Split(t, "/")
	if len(parts) < 2 {
		return "", "", nil, "", "", ""
	}
	host, share = parts[0], parts[1]
	if len(parts) > 2 {
		segments = parts[2:]
	}
	return
}

// findSMBMount looks for a CIFS mount of host/share, matching either the
// mount source (//host/share) or a unc=\\host\share option.
func findSMBMount(host, share string) (mountPoint string, ok bool) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return "", false
	}
	defer f.Close()

	matches := func(h, s string) bool {
		return h != "" && strings.EqualFold(h, host) && strings.EqualFold(s, share)
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fsType, src, mp, superOpts, opts, parsed := parseMountInfo(scanner.Text())
		if !parsed {
			continue
		}
		lfs := strings.ToLower(fsType)
		if lfs != "cifs" && !strings.Contains(lfs, "smb") {
			continue
		}
		if matches(parseSourceUNC(src)) {
			return mp, true
		}
		unc := findUNCOption(superOpts)
		if unc == "" {
			unc = findUNCOption(opts)
		}
		if unc != "" && matches(parseBackslashUNC(unc)) {
			return mp, true
		}
	}
	return "", false
}

// parseMountInfo picks the fields findSMBMount needs from a mountinfo line.
func parseMountInfo(line string) (fsType, source, mountPoint, superOpts, opts string, ok bool) {
	left, right, found := strings.Cut(line, " - ")
	if !found {
		return
	}
	l := strings.Fields(left)
	r := strings.Fields(right)
	if len(l) < 6 || len(r) < 3 {
		return
	}
	return r[0], r[1], decodeMountPoint(l[4]), strings.Join(r[2:], " "), strings.Join(l[5:], " "), true
}

func decodeMountPoint(s string) string {
	return strings.NewReplacer(`\040`, " ", `\134`, `\`).Replace(s)
}

func parseSourceUNC(src string) (host, share string) {
	rest, ok := strings.CutPrefix(src, "//")
	if !ok {
		return "", ""
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

func findUNCOption(opts string) string {
	for _, part := range strings.Split(opts, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(k, "unc") {
			return v
		}
	}
	return ""
}

func parseBackslashUNC(unc string) (host, share string) {
	parts := strings.Split(strings.TrimPrefix(unc, `\\`), `\`)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
