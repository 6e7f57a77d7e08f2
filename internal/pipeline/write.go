package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
)

// Write stores f under dir (relative to root) using the base name of
// f.Path. When f has a map it is written next to it with a ".map" suffix
// and referenced from a sourceMappingURL trailer.
func Write(ctx context.Context, root, dir string, f File) (string, error) {
	logger := ctxlog.FromContext(ctx)

	name := path.Base(f.Path)
	dest := filepath.Join(root, filepath.FromSlash(dir), name)
	contents := f.Contents

	if f.Map != nil {
		css := strings.HasSuffix(name, ".css")
		trailer := "//# sourceMappingURL=" + name + ".map\n"
		if css {
			trailer = "/*# sourceMappingURL=" + name + ".map */\n"
		}
		contents = append(append([]byte{}, contents...), trailer...)
		if err := fsutil.WriteFile(dest+".map", f.Map); err != nil {
			return "", fmt.Errorf("writing source map: %w", err)
		}
	}

	if err := fsutil.WriteFile(dest, contents); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	logger.Debug("Pipeline output written.", "path", dest, "bytes", len(contents))
	return dest, nil
}
