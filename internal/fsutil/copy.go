package fsutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// copyConcurrency bounds the number of files copied at the same time.
const copyConcurrency = 8

// CopyGlob copies every file matching pattern under root into destDir (also
// relative to root), preserving each file's path relative to the pattern's
// static base. It returns the number of files copied; no matches is not an error.
func CopyGlob(ctx context.Context, root, pattern, destDir string) (int, error) {
	files, err := Glob(root, pattern)
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, f := range files {
		src := filepath.Join(root, filepath.FromSlash(f))
		dst := filepath.Join(root, filepath.FromSlash(destDir), filepath.FromSlash(Rel(pattern, f)))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return CopyFile(src, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(files), nil
}

// CopyFile copies src to dst byte for byte, creating parent directories and
// preserving the source file mode.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
