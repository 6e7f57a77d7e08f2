package scripts

import (
	"context"
	"fmt"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/pipeline"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/evanw/esbuild/pkg/api"
)

// TaskName is the name of the script pipeline task.
const TaskName = "jsMove"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the jsMove task.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        TaskName,
		Description: "Concatenate, transpile and optionally minify scripts.",
		Run:         Build,
	})
}

// Stages returns the transform chain applied after concatenation.
func Stages(env *registry.Env) ([]pipeline.Stage, error) {
	target, err := pipeline.ParseTarget(env.Settings.Scripts.Target)
	if err != nil {
		return nil, err
	}

	opts := api.TransformOptions{
		Loader: api.LoaderJS,
		Target: target,
	}
	if env.Settings.Production {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}
	label := "transpile"
	if env.Settings.Production {
		label = "transpile+minify"
	}

	return []pipeline.Stage{
		pipeline.ConcatStage{Output: env.Settings.Paths.ScriptsName},
		pipeline.Esbuild{Label: label, Options: opts},
	}, nil
}

// Build runs the script pipeline: every script under the source glob, in
// lexical path order, becomes one bundle with a source map.
func Build(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	paths := env.Settings.Paths

	files, err := pipeline.Read(ctx, env.Root, paths.Scripts)
	if err != nil {
		return fmt.Errorf("collecting scripts: %w", err)
	}
	if len(files) == 0 {
		logger.Info("No scripts found, nothing to bundle.", "glob", paths.Scripts)
		return nil
	}

	stages, err := Stages(env)
	if err != nil {
		return err
	}
	out, err := pipeline.Run(ctx, files, stages...)
	if err != nil {
		return fmt.Errorf("bundling scripts: %w", err)
	}

	dest, err := pipeline.Write(ctx, env.Root, paths.ScriptsOut, out[0])
	if err != nil {
		return err
	}
	logger.Info("✅ Scripts bundled.", "inputs", len(files), "output", dest, "production", env.Settings.Production)
	return nil
}
