package styles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/pipeline"
)

var resolveCall = regexp.MustCompile(`(^|[^\w-])resolve\(\s*(?:"([^"]*)"|'([^']*)'|([^\s"')]+))\s*\)`)

// Resolver rewrites resolve("name") references to url("...") by searching
// the load paths for the named asset.
type Resolver struct {
	// Root is the project directory load paths are relative to.
	Root      string
	LoadPaths []string
	// Base is the URL prefix of resolved assets.
	Base string
}

// Lookup returns the URL of the asset name.
func (r Resolver) Lookup(name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("asset %q escapes the load paths", name)
	}
	for _, lp := range r.LoadPaths {
		info, err := os.Stat(filepath.Join(r.Root, filepath.FromSlash(lp), rel))
		if err != nil || info.IsDir() {
			continue
		}
		return strings.TrimSuffix(r.Base, "/") + "/" + filepath.ToSlash(rel), nil
	}
	return "", fmt.Errorf("asset %q not found in load paths %v", name, r.LoadPaths)
}

// Stage returns the resolver as a pipeline stage.
func (r Resolver) Stage() pipeline.Stage {
	return pipeline.StageFunc{Label: "assets", Fn: func(_ context.Context, f pipeline.File) (pipeline.File, error) {
		var firstErr error
		out := resolveCall.ReplaceAllStringFunc(string(f.Contents), func(call string) string {
			m := resolveCall.FindStringSubmatch(call)
			name := m[2] + m[3] + m[4]
			url, err := r.Lookup(name)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return call
			}
			return m[1] + fmt.Sprintf("url(%q)", url)
		})
		if firstErr != nil {
			return pipeline.File{}, firstErr
		}
		f.Contents = []byte(out)
		return f, nil
	}}
}
