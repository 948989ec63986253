// Package filename turns client-supplied upload names into safe, flat names
// inside the share root.
package filename

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yourname/fileshare/internal/models"
)

// maxNameBytes matches the NAME_MAX of common filesystems.
const maxNameBytes = 255

// Resolve returns a safe on-disk filename for a part. An empty declared name
// (or one with nothing usable left after sanitising) gets a random name.
func Resolve(declared string) string {
	if name := Sanitize(declared); name != "" {
		return name
	}

	return uuid.NewString()
}

// Sanitize keeps only the last path segment of name and replaces characters
// that are unsafe on common filesystems. It returns "" when nothing is left.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." || name == ".." {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == utf8.RuneError:
			b.WriteByte('_')
		case unicode.IsSpace(r), unicode.IsControl(r):
			b.WriteByte('_')
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Trim(truncate(strings.Trim(b.String(), ". "), maxNameBytes), ". ")
}

// Join places a resolved name under root and verifies the result is a direct
// child of root.
func Join(root, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", models.ErrPathEscape, name)
	}

	rootClean := filepath.Clean(root)
	abs := filepath.Clean(filepath.Join(rootClean, name))
	if filepath.Dir(abs) != rootClean {
		return "", fmt.Errorf("%w: %q", models.ErrPathEscape, name)
	}

	return abs, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}

	return s
}
