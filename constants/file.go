package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for receipt scanning.
// The engine works on raster images only; PDFs must be rendered upstream.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
