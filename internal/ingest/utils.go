package ingest

import (
	"path/filepath"
	"strings"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// AllowedExt checks ext against exts, or constants.AllowedExtensions when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
