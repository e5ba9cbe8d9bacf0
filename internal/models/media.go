package models

import (
	"path/filepath"
	"strings"
)

// ValidMediaName reports whether name is a plain file name inside the
// media dir: no separators, no dot files, no traversal.
func ValidMediaName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name && !strings.HasPrefix(name, ".")
}
