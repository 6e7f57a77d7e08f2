package reload

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/watcher"
)

// Runner runs named tasks, with their prerequisites, to completion.
type Runner interface {
	RunTasks(ctx context.Context, names ...string) error
}

// Binding ties a source glob to the task that rebuilds it.
type Binding struct {
	// Pattern is matched against slash-separated paths relative to the root.
	Pattern string
	// Task is the task name run when a matching file changes.
	Task string
}

// State is the rebuild state of a single binding.
type State int

const (
	// Idle means no rebuild is running for the binding.
	Idle State = iota
	// Rebuilding means a rebuild for the binding is in flight.
	Rebuilding
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// slot is the rebuild token of one binding.
type slot struct {
	running bool
	pending bool
}

// Controller turns file change events into task runs.
type Controller struct {
	root     string
	runner   Runner
	bindings []Binding

	mu    sync.Mutex
	slots map[string]*slot
	wg    sync.WaitGroup
}

// NewController creates a controller for files under root. Bindings are
// consulted in order and the first matching one wins.
func NewController(root string, runner Runner, bindings ...Binding) *Controller {
	slots := make(map[string]*slot, len(bindings))
	for _, b := range bindings {
		slots[b.Task] = &slot{}
	}
	return &Controller{
		root:     root,
		runner:   runner,
		bindings: bindings,
		slots:    slots,
	}
}

// Handle processes a change to path, which may be absolute or relative to
// the root. It reports whether a binding matched.
func (c *Controller) Handle(ctx context.Context, path string) bool {
	logger := ctxlog.FromContext(ctx)

	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(c.root, path)
		if err != nil {
			logger.Debug("Ignoring change outside the project root.", "path", path)
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	for _, b := range c.bindings {
		if !fsutil.Match(b.Pattern, rel) {
			continue
		}
		c.trigger(ctx, b, rel)
		return true
	}

	logger.Debug("Change does not match any watched glob.", "path", rel)
	return false
}

func (c *Controller) trigger(ctx context.Context, b Binding, rel string) {
	logger := ctxlog.FromContext(ctx).With("task", b.Task, "path", rel)

	c.mu.Lock()
	s := c.slots[b.Task]
	if s.running {
		s.pending = true
		c.mu.Unlock()
		logger.Debug("Rebuild in flight, queued one rerun.")
		return
	}
	s.running = true
	c.wg.Add(1)
	c.mu.Unlock()

	logger.Info("🔁 Change detected, rebuilding.")
	go c.rebuild(ctx, b, s)
}

// rebuild runs the binding's task until no rerun is pending.
func (c *Controller) rebuild(ctx context.Context, b Binding, s *slot) {
	defer c.wg.Done()
	logger := ctxlog.FromContext(ctx).With("task", b.Task)

	for {
		if err := c.runner.RunTasks(ctx, b.Task); err != nil {
			logger.Error("Rebuild failed.", "error", err)
		} else {
			logger.Info("✅ Rebuild finished.")
		}

		c.mu.Lock()
		if !s.pending || ctx.Err() != nil {
			s.running = false
			s.pending = false
			c.mu.Unlock()
			return
		}
		s.pending = false
		c.mu.Unlock()
		logger.Debug("Running queued rerun.")
	}
}

// State returns the current state of the binding for task.
func (c *Controller) State(task string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[task]; ok && s.running {
		return Rebuilding
	}
	return Idle
}

// Wait blocks until every in-flight rebuild, including queued reruns, is done.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Run consumes events from w until ctx is cancelled or the watcher closes,
// then waits for in-flight rebuilds.
func (c *Controller) Run(ctx context.Context, w watcher.Watcher) {
	logger := ctxlog.FromContext(ctx)
	defer c.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			if event.Op == watcher.OpChmod {
				continue
			}
			c.Handle(ctx, event.Path)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}
