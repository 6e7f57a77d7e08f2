package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
)

// Validate checks that every prerequisite refers to a registered task and
// that no task lists itself or the same prerequisite twice.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, t := range r.Tasks() {
		seen := make(map[string]struct{}, len(t.Deps))
		for _, dep := range t.Deps {
			if dep == t.Name {
				errs = append(errs, fmt.Sprintf("task '%s' depends on itself", t.Name))
				continue
			}
			if _, dup := seen[dep]; dup {
				errs = append(errs, fmt.Sprintf("task '%s' lists prerequisite '%s' more than once", t.Name, dep))
				continue
			}
			seen[dep] = struct{}{}
			if _, ok := r.tasks[dep]; !ok {
				errs = append(errs, fmt.Sprintf("task '%s' depends on unknown task '%s'", t.Name, dep))
			}
		}
		if t.Run == nil && len(t.Deps) == 0 {
			errs = append(errs, fmt.Sprintf("task '%s' has neither a body nor prerequisites", t.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("task registry validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	logger.Debug("Task registry validated.", "tasks", len(r.tasks))
	return nil
}
