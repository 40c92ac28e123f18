package types

import "strings"

// ParseVirtualPath splits a virtual path into its components.
// Example: ".::3f2a9c::config/app.env" -> [".", "3f2a9c", "config/app.env"]
func ParseVirtualPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, VirtualPathSeparator)
}

// BuildVirtualPath joins components with VirtualPathSeparator.
func BuildVirtualPath(components ...string) string {
	return strings.Join(components, VirtualPathSeparator)
}

// IsVirtualPath reports whether path names a git object rather than a file.
func IsVirtualPath(path string) bool {
	return strings.Contains(path, VirtualPathSeparator)
}

// ParseLocationID is the inverse of Location.ID. The line is left zero. An id
// is read as a history location only when it has exactly three components and
// the middle one is a full commit id (40 or 64 hex digits); anything else,
// including a working-tree path that happens to contain the separator, is a
// plain path.
func ParseLocationID(id string) Location {
	if !IsVirtualPath(id) {
		return Location{Path: id}
	}
	parts := ParseVirtualPath(id)
	if len(parts) == 3 && isCommitID(parts[1]) {
		return Location{Repo: parts[0], Commit: parts[1], Path: parts[2]}
	}
	return Location{Path: id}
}

func isCommitID(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
