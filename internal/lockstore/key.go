package lockstore

import (
	"fmt"
	"strings"
)

// KeyExt is the extension appended to every encoded key.
const KeyExt = ".yaml"

// keyEscaper escapes the escape character before either separator so the
// mapping stays reversible.
var keyEscaper = strings.NewReplacer(
	"%", "%25",
	"/", "%2F",
	`\`, "%5C",
)

var keyUnescaper = strings.NewReplacer(
	"%25", "%",
	"%2F", "/",
	"%5C", `\`,
)

// Canonical returns path with every backslash separator converted to a
// forward slash. Two paths that differ only in separator style name the
// same resource.
func Canonical(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// EncodeKey maps a resource path to the file name its lock record is
// stored under. Distinct canonical paths always produce distinct keys.
func EncodeKey(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return keyEscaper.Replace(Canonical(path)) + KeyExt, nil
}

// DecodeKey is the inverse of EncodeKey. It returns the canonical path
// for a key, with or without the extension.
func DecodeKey(key string) (string, error) {
	name := strings.TrimSuffix(key, KeyExt)
	if name == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidPath)
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '%' {
			continue
		}
		if i+3 > len(name) {
			return "", fmt.Errorf("%w: truncated escape in key %q", ErrInvalidPath, key)
		}
		switch name[i : i+3] {
		case "%25", "%2F", "%5C":
		default:
			return "", fmt.Errorf("%w: unknown escape %q in key %q", ErrInvalidPath, name[i:i+3], key)
		}
		i += 2
	}
	return keyUnescaper.Replace(name), nil
}
