package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultBaseName replaces a base name that sanitizes to nothing.
	DefaultBaseName = "audio_file"
	// MaxBaseNameLength bounds the sanitized name before the extension.
	MaxBaseNameLength = 200
)

var (
	invalidKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnder   = regexp.MustCompile(`_+`)
	extensionRe     = regexp.MustCompile(`^\.[a-zA-Z0-9]+$`)
)

// Sanitize turns an uploaded filename into a storage-safe object name:
// accents are folded, anything outside [A-Za-z0-9_-] becomes a single
// underscore, and the extension is kept as is. The result is stable under
// repeated application.
func Sanitize(filename string) string {
	base, ext := splitExt(filename)

	base = foldAccents(base)
	base = invalidKeyChars.ReplaceAllString(base, "_")
	base = repeatedUnder.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	if len(base) > MaxBaseNameLength {
		base = strings.TrimRight(base[:MaxBaseNameLength], "_")
	}
	if base == "" {
		base = DefaultBaseName
	}

	return base + ext
}

// splitExt separates a trailing ".ext". Leading dots never start an
// extension, and an extension with characters outside [A-Za-z0-9] is
// treated as part of the base name.
func splitExt(filename string) (string, string) {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 || strings.TrimLeft(filename[:idx], ".") == "" {
		return filename, ""
	}
	ext := filename[idx:]
	if !extensionRe.MatchString(ext) {
		return filename, ""
	}
	return filename[:idx], ext
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
