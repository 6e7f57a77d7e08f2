package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/reload"
)

// Module is the interface that all task modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// TaskFunc is the body of a task.
type TaskFunc func(ctx context.Context, env *Env) error

// Task is a named unit of work with prerequisites.
type Task struct {
	Name        string
	Description string
	// Deps are prerequisite task names, all run to completion before Run.
	Deps []string
	// Run is the task body. Composite tasks leave it nil.
	Run TaskFunc
	// Production forces the production flag for any run that includes the task.
	Production bool
}

// Runner runs named tasks, with their prerequisites, to completion.
type Runner interface {
	RunTasks(ctx context.Context, names ...string) error
}

// Env is everything a task body may depend on. It is built once per
// invocation and shared read-only by every task of a run.
type Env struct {
	// Root is the project directory all configured paths are relative to.
	Root     string
	Settings *config.Settings

	TemplateContext map[string]any
	ScriptRules     config.RuleSet
	StyleRules      config.RuleSet

	// Reload reaches the dev server's connected clients, if one is running.
	Reload *reload.Signal
	// Runner starts fresh runs of other tasks, used by the watch controller.
	Runner Runner
	// Out receives human-readable task output such as lint reports.
	Out io.Writer
}

// WithProduction returns a copy of env whose settings have the production
// flag set to on. The receiver is left untouched.
func (e *Env) WithProduction(on bool) *Env {
	if e.Settings.Production == on {
		return e
	}
	settings := *e.Settings
	settings.Production = on
	out := *e
	out.Settings = &settings
	return &out
}

// Registry holds all registered tasks for a single application instance.
type Registry struct {
	tasks map[string]*Task
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// RegisterTask adds a task. Registering the same name twice is a programming
// error and panics.
func (r *Registry) RegisterTask(t *Task) {
	if t.Name == "" {
		panic("task registered without a name")
	}
	if _, exists := r.tasks[t.Name]; exists {
		panic(fmt.Sprintf("task with name '%s' already registered", t.Name))
	}
	slog.Debug("Registering task.", "name", t.Name, "deps", t.Deps)
	r.tasks[t.Name] = t
}

// Task returns the task registered under name.
func (r *Registry) Task(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Tasks returns all registered tasks sorted by name.
func (r *Registry) Tasks() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
