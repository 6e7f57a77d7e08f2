package templates

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
)

// Batch is the set of template files and their directories captured at
// discovery. Files or directories created later are not part of it.
type Batch struct {
	// Dirs are the distinct parent directories, sorted.
	Dirs []string
	// Files are the discovered template paths, sorted.
	Files []string
}

// Discover expands pattern under root and snapshots the batch.
func Discover(root, pattern string) (*Batch, error) {
	files, err := fsutil.Glob(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("discovering templates: %w", err)
	}

	seen := make(map[string]struct{})
	b := &Batch{Files: files}
	for _, f := range files {
		dir := fsutil.Dir(f)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		b.Dirs = append(b.Dirs, dir)
	}
	sort.Strings(b.Dirs)
	return b, nil
}

// Partial is a template registered under a partial name.
type Partial struct {
	Name string
	Path string
}

// Partials returns the partials of the batch in registration order with
// duplicate names removed.
func (b *Batch) Partials() []Partial {
	var out []Partial
	taken := make(map[string]struct{})
	for _, dir := range b.Dirs {
		for _, f := range b.Files {
			rel, ok := strings.CutPrefix(f, dir+"/")
			if !ok {
				continue
			}
			name := strings.TrimSuffix(rel, path.Ext(rel))
			if _, dup := taken[name]; dup {
				continue
			}
			taken[name] = struct{}{}
			out = append(out, Partial{Name: name, Path: f})
		}
	}
	return out
}
