// Package assets registers the tasks that move static files into the build
// directory unchanged, and the task that removes the build directory.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers fontsMove, imgMove and clean.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        "fontsMove",
		Description: "Copy fonts into the build directory.",
		Run: func(ctx context.Context, env *registry.Env) error {
			return Copy(ctx, env.Root, "fonts", env.Settings.Paths.Fonts, env.Settings.Paths.FontsOut)
		},
	})
	r.RegisterTask(&registry.Task{
		Name:        "imgMove",
		Description: "Copy images into the build directory.",
		Run: func(ctx context.Context, env *registry.Env) error {
			return Copy(ctx, env.Root, "images", env.Settings.Paths.Images, env.Settings.Paths.ImagesOut)
		},
	})
	r.RegisterTask(&registry.Task{
		Name:        "clean",
		Description: "Remove the build directory.",
		Run:         Clean,
	})
}

// Copy mirrors the files matching pattern into dest, keeping their paths
// relative to the pattern's base. No matches is a successful no-op.
func Copy(ctx context.Context, root, kind, pattern, dest string) error {
	logger := ctxlog.FromContext(ctx)

	n, err := fsutil.CopyGlob(ctx, root, pattern, dest)
	if err != nil {
		return fmt.Errorf("copying %s: %w", kind, err)
	}
	if n == 0 {
		logger.Info(fmt.Sprintf("No %s found, nothing to copy.", kind), "glob", pattern)
		return nil
	}
	logger.Info(fmt.Sprintf("✅ Copied %s.", kind), "count", n, "dest", dest)
	return nil
}

// Clean removes the build directory. A missing directory is not an error.
func Clean(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)

	dir := env.Settings.Paths.BuildDir
	if !filepath.IsLocal(filepath.FromSlash(dir)) {
		return fmt.Errorf("refusing to remove %q outside the project root", dir)
	}
	if err := os.RemoveAll(filepath.Join(env.Root, filepath.FromSlash(dir))); err != nil {
		return fmt.Errorf("removing build directory: %w", err)
	}
	logger.Info("🧹 Build directory removed.", "dir", dir)
	return nil
}
