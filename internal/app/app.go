package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/dag"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/reload"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/lint"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/templates"
	"github.com/joho/godotenv"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	graph    *dag.Graph
	executor *dag.Executor
	env      *registry.Env
}

// NewApp is the constructor for the main application. Every startup error,
// such as an unparseable config file, a malformed rule set or a cyclic task
// graph, is returned before any task runs.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	out := &lockedWriter{w: outW}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, out)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if err := loadEnvFile(ctx, resolve(root, cfg.EnvFile)); err != nil {
		return nil, err
	}

	settings, err := loader.Load(ctx, resolve(root, cfg.ConfigPath), config.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Port > 0 {
		settings.Server.Port = cfg.Port
	}
	settings.Production = os.Getenv("NODE_ENV") == "production"
	logger.Debug("Configuration loaded.", "root", root, "production", settings.Production)

	env, err := newEnv(ctx, root, settings)
	if err != nil {
		return nil, err
	}
	env.Out = out

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	graph, err := dag.Build(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build task graph: %w", err)
	}
	logger.Debug("Task graph built.", "tasks", graph.Len())

	exec := dag.NewExecutor(graph, cfg.Workers)
	env.Reload = &reload.Signal{}
	env.Runner = exec.Bind(env)

	return &App{
		outW:     out,
		logger:   logger,
		registry: reg,
		graph:    graph,
		executor: exec,
		env:      env,
	}, nil
}

// newEnv loads the template context and both lint rule sets.
func newEnv(ctx context.Context, root string, settings *config.Settings) (*registry.Env, error) {
	logger := ctxlog.FromContext(ctx)

	vars, found, err := templates.LoadContext(root, settings.Paths.TemplateVars)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Warn("Template variables file not found, rendering with an empty context.", "path", settings.Paths.TemplateVars)
	}

	scriptRules, found, err := lint.LoadRuleSet(root, settings.Lint.ScriptRules)
	if err != nil {
		return nil, fmt.Errorf("loading script rules: %w", err)
	}
	if !found {
		logger.Debug("Script rule set not found, no script rules enabled.", "path", settings.Lint.ScriptRules)
	}
	if _, err := lint.NewScriptLinter(ctx, scriptRules); err != nil {
		return nil, fmt.Errorf("invalid script rules in %s: %w", settings.Lint.ScriptRules, err)
	}

	styleRules, found, err := lint.LoadRuleSet(root, settings.Lint.StyleRules)
	if err != nil {
		return nil, fmt.Errorf("loading style rules: %w", err)
	}
	if !found {
		logger.Debug("Style rule set not found, no style rules enabled.", "path", settings.Lint.StyleRules)
	}
	if _, err := lint.NewStyleLinter(ctx, styleRules); err != nil {
		return nil, fmt.Errorf("invalid style rules in %s: %w", settings.Lint.StyleRules, err)
	}

	return &registry.Env{
		Root:            root,
		Settings:        settings,
		TemplateContext: vars,
		ScriptRules:     scriptRules,
		StyleRules:      styleRules,
	}, nil
}

// loadEnvFile adds the variables of an ini-style env file to the process
// environment. Variables already set are kept. A missing file is ignored.
func loadEnvFile(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Env file not found, skipping.", "path", path)
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	logger.Debug("Env file loaded.", "path", path)
	return nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Env returns the environment shared by every task. This is primarily for testing.
func (a *App) Env() *registry.Env {
	return a.env
}
