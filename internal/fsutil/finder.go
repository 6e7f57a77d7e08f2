// Package fsutil provides the file system helpers shared by every task:
// glob expansion relative to a project root, glob matching for watch events,
// and verbatim tree copies.
package fsutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands the given patterns against root and returns the matching
// regular files as slash-separated paths relative to root, sorted and
// de-duplicated. Patterns prefixed with "!" remove matches produced by the
// patterns before them. A pattern whose base directory does not exist
// matches nothing.
func Glob(root string, patterns ...string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		if exclude, ok := strings.CutPrefix(pattern, "!"); ok {
			exclude = clean(exclude)
			for p := range seen {
				if matched, _ := doublestar.Match(exclude, p); matched {
					delete(seen, p)
				}
			}
			continue
		}

		pattern = clean(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for p := range seen {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// Match reports whether the slash-separated relative path rel matches pattern.
func Match(pattern, rel string) bool {
	matched, err := doublestar.Match(clean(pattern), filepath.ToSlash(rel))
	return err == nil && matched
}

// Base returns the static directory prefix of a glob pattern, i.e. the part
// that relative output paths are computed from ("src/fonts/**/*" -> "src/fonts").
func Base(pattern string) string {
	base, _ := doublestar.SplitPattern(clean(pattern))
	if base == "." {
		return ""
	}
	return base
}

// Rel returns p relative to the static base of pattern.
func Rel(pattern, p string) string {
	base := Base(pattern)
	if base == "" {
		return p
	}
	rel := strings.TrimPrefix(p, base)
	return strings.TrimPrefix(rel, "/")
}

// Dir returns the slash-separated parent directory of p.
func Dir(p string) string {
	return path.Dir(p)
}

func clean(pattern string) string {
	pattern = filepath.ToSlash(pattern)
	return strings.TrimPrefix(pattern, "./")
}
