package adapter

import (
	"mime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pickfs/internal/handle"
)

// NormalizeExtension makes ext start with a dot. Already-dotted extensions
// pass through unchanged.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// NormalizeAccept dots every extension and drops duplicates and blanks.
// It is idempotent.
func NormalizeAccept(accept map[string][]string) map[string][]string {
	if len(accept) == 0 {
		return nil
	}
	out := make(map[string][]string, len(accept))
	for mimeType, exts := range accept {
		seen := make(map[string]bool, len(exts))
		norm := make([]string, 0, len(exts))
		for _, ext := range exts {
			e := NormalizeExtension(ext)
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			norm = append(norm, e)
		}
		out[mimeType] = norm
	}
	return out
}

// AcceptTypes builds the native picker type list.
func AcceptTypes(accept map[string][]string, description string) []AcceptType {
	norm := NormalizeAccept(accept)
	if len(norm) == 0 {
		return nil
	}
	return []AcceptType{{Description: description, Accept: norm}}
}

// AcceptForExtensions builds an accept map from bare extensions, using the
// registered MIME type of each (application/octet-stream when unknown).
func AcceptForExtensions(exts []string) map[string][]string {
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, ext := range exts {
		e := NormalizeExtension(ext)
		if e == "" {
			continue
		}
		mt := mime.TypeByExtension(e)
		if mt == "" {
			mt = "application/octet-stream"
		} else {
			mt = baseMIME(mt)
		}
		out[mt] = append(out[mt], e)
	}
	return out
}

// inputAccept flattens an accept map into the input control's token list.
func inputAccept(accept map[string][]string) []string {
	norm := NormalizeAccept(accept)
	mimes := make([]string, 0, len(norm))
	for m := range norm {
		mimes = append(mimes, m)
	}
	sort.Strings(mimes)

	var tokens []string
	for _, m := range mimes {
		if m != "application/octet-stream" {
			tokens = append(tokens, m)
		}
		tokens = append(tokens, norm[m]...)
	}
	return tokens
}

// acceptFilter enforces an accept map on files an input control returned.
type acceptFilter struct {
	pattern string
	mimes   []string
}

func newAcceptFilter(accept map[string][]string) acceptFilter {
	var f acceptFilter
	var exts []string
	seen := make(map[string]bool)
	for m, list := range NormalizeAccept(accept) {
		if len(list) == 0 && m != "application/octet-stream" {
			f.mimes = append(f.mimes, strings.ToLower(m))
		}
		for _, e := range list {
			e = strings.ToLower(strings.TrimPrefix(e, "."))
			if !seen[e] {
				seen[e] = true
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(exts)
	switch len(exts) {
	case 0:
	case 1:
		f.pattern = "*." + exts[0]
	default:
		f.pattern = "*.{" + strings.Join(exts, ",") + "}"
	}
	return f
}

func (f acceptFilter) empty() bool { return f.pattern == "" && len(f.mimes) == 0 }

func (f acceptFilter) match(file *handle.File) bool {
	if f.empty() {
		return true
	}
	if f.pattern != "" {
		if ok, err := doublestar.Match(f.pattern, strings.ToLower(file.Name)); err == nil && ok {
			return true
		}
	}
	fileType := strings.ToLower(baseMIME(file.Type))
	for _, m := range f.mimes {
		if prefix, ok := strings.CutSuffix(m, "/*"); ok {
			if strings.HasPrefix(fileType, prefix+"/") {
				return true
			}
		} else if m == fileType {
			return true
		}
	}
	return false
}

func (f acceptFilter) apply(files []*handle.File) []*handle.File {
	if f.empty() {
		return files
	}
	out := make([]*handle.File, 0, len(files))
	for _, file := range files {
		if f.match(file) {
			out = append(out, file)
		}
	}
	return out
}

func baseMIME(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
