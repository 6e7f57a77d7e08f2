package styles

import (
	"context"
	"fmt"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/pipeline"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/evanw/esbuild/pkg/api"
)

// TaskName is the name of the style pipeline task.
const TaskName = "cssMove"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the cssMove task.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        TaskName,
		Description: "Transform, concatenate and optionally minify stylesheets.",
		Run:         Build,
	})
}

// Stages returns the full style chain: the per-file transforms in order,
// concatenation, and minification in production.
func Stages(env *registry.Env) ([]pipeline.Stage, error) {
	cfg := env.Settings.Styles
	engines, err := pipeline.ParseEngines(cfg.Engines)
	if err != nil {
		return nil, fmt.Errorf("styles: %w", err)
	}

	stages := []pipeline.Stage{
		pipeline.Esbuild{Label: "nesting", Options: api.TransformOptions{
			Loader:    api.LoaderCSS,
			Supported: map[string]bool{"nesting": false},
		}},
		Shorthand(),
		Resolver{Root: env.Root, LoadPaths: cfg.AssetLoadPaths, Base: cfg.AssetBase}.Stage(),
		pipeline.Esbuild{Label: "polyfill", Options: api.TransformOptions{
			Loader:  api.LoaderCSS,
			Engines: engines,
		}},
		Prefixer(engines),
		pipeline.ConcatStage{Output: env.Settings.Paths.StylesName},
	}
	if env.Settings.Production {
		stages = append(stages, pipeline.Esbuild{Label: "minify", Options: api.TransformOptions{
			Loader:           api.LoaderCSS,
			Engines:          engines,
			MinifyWhitespace: true,
			MinifySyntax:     true,
		}})
	}
	return stages, nil
}

// Build runs the style pipeline over every stylesheet under the source glob.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	paths := env.Settings.Paths

	files, err := pipeline.Read(ctx, env.Root, paths.Styles)
	if err != nil {
		return fmt.Errorf("collecting stylesheets: %w", err)
	}
	if len(files) == 0 {
		logger.Info("No stylesheets found, nothing to bundle.", "glob", paths.Styles)
		return nil
	}

	stages, err := Stages(env)
	if err != nil {
		return err
	}
	out, err := pipeline.Run(ctx, files, stages...)
	if err != nil {
		return fmt.Errorf("bundling stylesheets: %w", err)
	}

	dest, err := pipeline.Write(ctx, env.Root, paths.StylesOut, out[0])
	if err != nil {
		return err
	}
	logger.Info("✅ Stylesheets bundled.", "inputs", len(files), "output", dest, "production", env.Settings.Production)
	return nil
}
