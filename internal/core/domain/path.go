package domain

import "strings"

// BaseName returns the last element of a slash-separated repository path.
func BaseName(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// ParentPath returns the folder containing p, or empty for top-level entries.
func ParentPath(p string) string {
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return ""
}
