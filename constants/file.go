package constants

import "strings"

const (
	PDF = "PDF"
	TXT = "TXT"
)

// FileTypes holds the allowed values for documents.format.
var FileTypes = []string{PDF, TXT}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns PDF or TXT for a normalized extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
