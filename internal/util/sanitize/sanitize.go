// Package sanitize cleans user-supplied names before they become object
// keys. Filenames coming from shells and file managers occasionally carry
// invisible Unicode characters or stray whitespace that later make objects
// impossible to address by name.
package sanitize

import "strings"

// dropInvisible removes zero-width and other invisible Unicode characters.
func dropInvisible(r rune) rune {
	switch r {
	case '\u200B', // zero-width space
		'\u200C', // zero-width non-joiner
		'\u200D', // zero-width joiner
		'\uFEFF', // zero-width no-break space (BOM)
		'\u00AD', // soft hyphen
		'\u2060': // word joiner
		return -1
	}
	return r
}

// ObjectKey normalizes a filename for use as an object key: strips
// invisible characters, converts path separators to forward slashes and
// trims surrounding whitespace.
func ObjectKey(name string) string {
	if name == "" {
		return name
	}

	name = strings.Map(dropInvisible, name)
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimSpace(name)
}

// BucketName normalizes a bucket name: invisible characters and
// surrounding whitespace are removed, and the name is lower-cased the way
// S3 requires.
func BucketName(name string) string {
	if name == "" {
		return name
	}

	name = strings.Map(dropInvisible, name)
	return strings.ToLower(strings.TrimSpace(name))
}
