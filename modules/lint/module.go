package lint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"golang.org/x/sync/errgroup"
)

// checkConcurrency bounds the number of files checked at the same time.
const checkConcurrency = 8

// Checker lints the contents of one file.
type Checker interface {
	Check(file string, src []byte) []Finding
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the eslint and stylelint tasks.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        "eslint",
		Description: "Report script lint findings.",
		Run:         LintScripts,
	})
	r.RegisterTask(&registry.Task{
		Name:        "stylelint",
		Description: "Report stylesheet lint findings.",
		Run:         LintStyles,
	})
}

// LintScripts checks the configured script globs. Findings are reported,
// never returned as errors.
func LintScripts(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)

	linter, err := NewScriptLinter(ctx, env.ScriptRules)
	if err != nil {
		logger.Error("Script rules are invalid, skipping script lint.", "error", err)
		return nil
	}
	files, err := fsutil.Glob(env.Root, env.Settings.Lint.Scripts...)
	if err != nil {
		logger.Error("Could not expand script lint globs.", "error", err)
		return nil
	}
	report(ctx, env, "eslint", Run(ctx, env.Root, files, linter))
	return nil
}

// LintStyles checks every stylesheet under the style glob. Findings are
// reported, never returned as errors.
func LintStyles(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)

	linter, err := NewStyleLinter(ctx, env.StyleRules)
	if err != nil {
		logger.Error("Style rules are invalid, skipping style lint.", "error", err)
		return nil
	}
	files, err := fsutil.Glob(env.Root, env.Settings.Paths.Styles)
	if err != nil {
		logger.Error("Could not expand style lint glob.", "error", err)
		return nil
	}
	report(ctx, env, "stylelint", Run(ctx, env.Root, files, linter))
	return nil
}

// Run checks files concurrently and returns one result per file in input
// order. A file that cannot be read is reported as a finding.
func Run(ctx context.Context, root string, files []string, c Checker) []Result {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, f := range files {
		g.Go(func() error {
			results[i] = Result{File: f}
			if ctx.Err() != nil {
				return nil
			}
			src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
			if err != nil {
				results[i].Findings = []Finding{{File: f, Rule: "io", Severity: Error, Message: fmt.Sprintf("Cannot read file: %v", err)}}
				return nil
			}
			results[i].Findings = c.Check(f, src)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func report(ctx context.Context, env *registry.Env, title string, results []Result) {
	logger := ctxlog.FromContext(ctx)

	out := env.Out
	if out == nil {
		out = io.Discard
	}
	if err := NewReporter(out).Render(title, results); err != nil {
		logger.Warn("Could not write lint report.", "error", err)
	}
	errs, warnings := Counts(results)
	logger.Info(fmt.Sprintf("✅ %s finished.", title), "files", len(results), "errors", errs, "warnings", warnings)
}
