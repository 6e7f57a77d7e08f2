package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/dag"
)

// Run executes the requested tasks with their prerequisites. SIGINT and
// SIGTERM cancel the run, which is how a dev server is stopped.
func (a *App) Run(ctx context.Context, tasks ...string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.logger.Debug("App.Run method started.", "tasks", tasks)

	a.logger.Info("🚀 Starting tasks...", "tasks", tasks)
	report, err := a.executor.Run(ctx, a.env, tasks...)
	if report == nil {
		return err
	}

	for _, res := range report.Results {
		switch res.State {
		case dag.Done:
			a.logger.Debug("Task finished.", "task", res.Name, "duration", res.Duration)
		case dag.Failed:
			a.logger.Error("Task failed.", "task", res.Name, "duration", res.Duration, "error", res.Err)
		case dag.Skipped:
			a.logger.Warn("Task skipped.", "task", res.Name)
		}
	}
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")
	return nil
}

// List prints every registered task with its prerequisites.
func (a *App) List() error {
	tw := tabwriter.NewWriter(a.outW, 0, 0, 2, ' ', 0)
	for _, t := range a.registry.Tasks() {
		deps := ""
		if len(t.Deps) > 0 {
			deps = fmt.Sprintf("%v", t.Deps)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Description, deps)
	}
	return tw.Flush()
}
