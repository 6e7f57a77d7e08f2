// Package browsersync registers the development server task and the watch
// variants of the pipeline tasks it triggers on source changes.
package browsersync

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/devserver"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/reload"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/watcher"
)

// TaskName is the name of the development server task.
const TaskName = "browser-sync"

// Watch task names.
const (
	StylesWatch    = "cssMove-watch"
	ScriptsWatch   = "jsMove-watch"
	TemplatesWatch = "compile-watch"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers browser-sync and the *-watch tasks.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        TaskName,
		Description: "Serve the build directory and rebuild on source changes.",
		Run:         Serve,
	})
	for name, dep := range map[string]string{
		StylesWatch:    "cssMove",
		ScriptsWatch:   "jsMove",
		TemplatesWatch: "compile",
	} {
		r.RegisterTask(&registry.Task{
			Name:        name,
			Description: fmt.Sprintf("Run %s, then reload browsers.", dep),
			Deps:        []string{dep},
			Run:         Reload,
		})
	}
}

// Reload asks connected browsers to reload.
func Reload(ctx context.Context, env *registry.Env) error {
	if env.Reload == nil {
		return nil
	}
	return env.Reload.Broadcast(ctx)
}

// Bindings routes source globs to their watch tasks.
func Bindings(env *registry.Env) []reload.Binding {
	p := env.Settings.Paths
	return []reload.Binding{
		{Pattern: p.Styles, Task: StylesWatch},
		{Pattern: p.Scripts, Task: ScriptsWatch},
		{Pattern: p.Templates, Task: TemplatesWatch},
	}
}

// Serve starts the dev server and the source watcher, and blocks until ctx
// is cancelled.
func Serve(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	if env.Runner == nil {
		return errors.New("browser-sync needs a task runner")
	}

	cfg := env.Settings.Server
	dir := filepath.Join(env.Root, filepath.FromSlash(env.Settings.Paths.BuildDir))
	srv := devserver.New(dir, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if _, err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Dev server did not shut down cleanly.", "error", err)
		}
	}()

	if env.Reload != nil {
		detach := env.Reload.Attach(srv)
		defer detach()
	}

	w, err := watcher.NewFSNotifyWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	src := filepath.Join(env.Root, filepath.FromSlash(env.Settings.Paths.SrcRoot))
	if err := w.WatchRecursive(src); err != nil {
		return fmt.Errorf("watching %s: %w", src, err)
	}
	logger.Info("👀 Watching sources.", "dir", src)

	controller := reload.NewController(env.Root, env.Runner, Bindings(env)...)
	controller.Run(ctx, w)

	logger.Info("🛑 Dev server stopping.")
	return nil
}
