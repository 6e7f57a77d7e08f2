package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
)

// File is a unit of content flowing through a pipeline.
type File struct {
	// Path is the slash-separated name of the file relative to the project
	// root, or the output name once files were concatenated.
	Path     string
	Contents []byte
	// Map is a version 3 source map for Contents, or nil.
	Map []byte
}

// Read loads the files matched by patterns under root in sorted order.
func Read(ctx context.Context, root string, patterns ...string) ([]File, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.Glob(root, patterns...)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		files = append(files, File{Path: p, Contents: data})
	}
	logger.Debug("Pipeline inputs read.", "patterns", patterns, "count", len(files))
	return files, nil
}
