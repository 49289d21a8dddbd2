package fileinfo

import (
	"path/filepath"
	"strings"
)

// Shell paths are either native OS paths or smb:// display paths. Display
// paths always use forward slashes and never end in one.

// IsSMBDisplay reports whether the path is a canonical smb display path (smb://...).
func IsSMBDisplay(p string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(p)), "smb://")
}

// splitDisplay returns the smb://host/share root and the segments below it.
func splitDisplay(p string) (root string, segs []string) {
	rest := strings.Trim(p[len("smb://"):], "/")
	parts := strings.Split(rest, "/")
	n := min(2, len(parts))
	root = "smb://" + strings.Join(parts[:n], "/")
	for _, s := range parts[n:] {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return root, segs
}

// JoinPath appends a slash-separated relative path to base.
func JoinPath(base, rel string) string {
	if !IsSMBDisplay(base) {
		return filepath.Join(base, filepath.FromSlash(rel))
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(base, "/") + "/" + rel
}

// ParentPath returns the directory containing p. The share root of an smb
// path is its own parent.
func ParentPath(p string) string {
	if !IsSMBDisplay(p) {
		return filepath.Dir(p)
	}
	root, segs := splitDisplay(p)
	if len(segs) == 0 {
		return root
	}
	return JoinPath(root, strings.Join(segs[:len(segs)-1], "/"))
}

// BaseName returns the last path segment analogous to filepath.Base.
func BaseName(p string) string {
	if !IsSMBDisplay(p) {
		return filepath.Base(p)
	}
	root, segs := splitDisplay(p)
	if len(segs) == 0 {
		return root[strings.LastIndexByte(root, '/')+1:]
	}
	return segs[len(segs)-1]
}

// RelPath returns p relative to root with forward slashes. ok is false
// when p is not below root.
func RelPath(root, p string) (rel string, ok bool) {
	if IsSMBDisplay(root) != IsSMBDisplay(p) {
		return "", false
	}
	if IsSMBDisplay(root) {
		root = strings.TrimRight(root, "/")
		if p == root {
			return "", true
		}
		rel, ok = strings.CutPrefix(p, root+"/")
		return rel, ok
	}
	r, err := filepath.Rel(root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	if r == "." {
		return "", true
	}
	return filepath.ToSlash(r), true
}
