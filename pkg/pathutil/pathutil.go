// Package pathutil holds the small path helpers the storage registry and the
// template resolver share: separator normalisation, trailing slash handling,
// joining template names onto storage roots and locating the first existing
// candidate file.
package pathutil

import (
	"os"
	"strings"
)

// Normalize converts a filesystem path to forward slashes, collapses repeated
// separators (a leading double slash is kept for UNC shares) and upper-cases a
// Windows drive letter. Stream wrappers such as "vfs://" are left untouched.
func Normalize(path string) string {
	wrapper := ""
	if idx := strings.Index(path, "://"); idx > 0 && isScheme(path[:idx]) {
		wrapper = path[:idx+3]
		path = path[idx+3:]
	}

	path = strings.ReplaceAll(path, `\`, "/")
	path = collapseSlashes(path)

	if len(path) > 1 && path[1] == ':' {
		path = strings.ToUpper(path[:1]) + path[1:]
	}
	return wrapper + path
}

// TrailingSlash removes any trailing forward or back slashes and appends
// exactly one forward slash.
func TrailingSlash(value string) string {
	return strings.TrimRight(value, `/\`) + "/"
}

// Join appends name to dir with exactly one slash between them. Leading
// slashes on name are dropped so "/section/card" and "section/card" resolve
// to the same file.
func Join(dir, name string) string {
	name = strings.TrimLeft(name, `/\`)
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, `/\`) + "/" + name
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Locate returns the first candidate that exists on disk, or "" when none do.
func Locate(candidates []string) string {
	for _, candidate := range candidates {
		if FileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// collapseSlashes squeezes runs of "/" into one, except at the very start of
// the path.
func collapseSlashes(path string) string {
	if len(path) < 2 {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	b.WriteByte(path[0])
	for i := 1; i < len(path); i++ {
		if path[i] == '/' && path[i-1] == '/' && i > 1 {
			continue
		}
		b.WriteByte(path[i])
	}
	return b.String()
}

func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
