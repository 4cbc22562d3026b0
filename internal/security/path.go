// Package security implements the admission checks that stand between the
// wire-level request and the filesystem/dispatcher: path traversal
// defense, Host header validation, and the security event log both feed.
package security

import (
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrForbidden covers any request the Path Resolver refuses to answer:
// traversal attempts, absolute/drive-letter paths, or a resolved path that
// escapes the resource root. Callers map it to 403.
var ErrForbidden = errors.New("security: forbidden path")

var winDriveLetter = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// ResolvePath resolves requestPath (a request target's path component, no
// query string) to an absolute path under resourcesDir, or returns
// ErrForbidden. It percent-decodes exactly once, rejects any segment that
// is ".." after that decode, rejects Windows drive-letter prefixes, and
// verifies the canonicalized result is a descendant of resourcesDir —
// mirroring the original server's safe_resolve_path.
func ResolvePath(requestPath, resourcesDir string) (string, error) {
	decoded, err := url.PathUnescape(requestPath)
	if err != nil {
		return "", ErrForbidden
	}

	decoded = strings.ReplaceAll(decoded, "\\", "/")
	decoded = strings.TrimLeft(decoded, "/")

	if winDriveLetter.MatchString(decoded) {
		return "", ErrForbidden
	}

	var components []string
	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", ErrForbidden
		default:
			components = append(components, seg)
		}
	}

	base, err := filepath.Abs(resourcesDir)
	if err != nil {
		return "", ErrForbidden
	}
	base, err = filepath.EvalSymlinks(base)
	if err != nil {
		return "", ErrForbidden
	}

	target := filepath.Join(append([]string{base}, components...)...)
	resolved, err := resolveWithinBase(target, base)
	if err != nil {
		return "", ErrForbidden
	}

	return resolved, nil
}

// resolveWithinBase resolves symlinks in target where possible (the final
// path component may not yet exist, e.g. an upload target) and asserts the
// result is base or a descendant of it.
func resolveWithinBase(target, base string) (string, error) {
	resolved := target
	if real, err := filepath.EvalSymlinks(target); err == nil {
		resolved = real
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrForbidden
	}
	return resolved, nil
}
