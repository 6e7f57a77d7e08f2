package dag

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 4

// Executor runs task closures of a graph on a bounded worker pool.
type Executor struct {
	Graph   *Graph
	Workers int
}

// NewExecutor creates an executor for the graph. A non-positive worker
// count falls back to DefaultWorkers.
func NewExecutor(g *Graph, workers int) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Executor{Graph: g, Workers: workers}
}

// nodeRun is the per-run execution state of one node. The graph's nodes are
// never mutated, so concurrent runs of the same graph do not interfere.
type nodeRun struct {
	node       *Node
	depCount   atomic.Int32
	state      atomic.Int32
	err        error
	duration   time.Duration
	dependents []*nodeRun
}

type run struct {
	env       *registry.Env
	readyChan chan *nodeRun
	wg        sync.WaitGroup
}

// Run executes the requested tasks and their transitive prerequisites. Each
// task of the closure runs at most once. The returned report is never nil
// when the targets resolve; the error joins the failures of every task.
func (e *Executor) Run(ctx context.Context, env *registry.Env, targets ...string) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	closure, err := e.Graph.Closure(targets...)
	if err != nil {
		return nil, err
	}

	for _, n := range closure {
		if n.Task.Production {
			logger.Debug("Production mode forced by task.", "task", n.Name())
			env = env.WithProduction(true)
			break
		}
	}

	runs := make(map[string]*nodeRun, len(closure))
	for _, n := range closure {
		nr := &nodeRun{node: n}
		nr.depCount.Store(int32(len(n.deps)))
		runs[n.Name()] = nr
	}
	for _, nr := range runs {
		for _, name := range sortedKeys(nr.node.dependents) {
			if dep, ok := runs[name]; ok {
				nr.dependents = append(nr.dependents, dep)
			}
		}
	}

	r := &run{
		env:       env,
		readyChan: make(chan *nodeRun, len(closure)),
	}
	r.wg.Add(len(closure))
	for _, n := range closure {
		if nr := runs[n.Name()]; nr.depCount.Load() == 0 {
			r.readyChan <- nr
		}
	}

	workers := min(e.Workers, len(closure))
	logger.Debug("Executor starting workers.", "workers", workers, "tasks", len(closure))
	var workersDone sync.WaitGroup
	for i := range workers {
		workersDone.Add(1)
		go func(id int) {
			defer workersDone.Done()
			r.worker(ctx, id)
		}(i + 1)
	}

	r.wg.Wait()
	close(r.readyChan)
	workersDone.Wait()

	report := newReport(closure, runs)
	err = report.Err()
	if cerr := ctx.Err(); cerr != nil && !report.Succeeded() {
		err = errors.Join(err, cerr)
	}
	return report, err
}

// worker is the core processing loop for a single concurrent worker.
func (r *run) worker(ctx context.Context, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for nr := range r.readyChan {
		if !nr.state.CompareAndSwap(int32(Pending), int32(Running)) {
			continue
		}
		workerLogger := logger.With("workerID", workerID, "task", nr.node.Name())

		if err := ctx.Err(); err != nil {
			nr.state.Store(int32(Skipped))
			nr.err = err
			r.skipDependents(nr)
			r.wg.Done()
			continue
		}

		start := time.Now()
		if nr.node.Task.Run != nil {
			workerLogger.Info(fmt.Sprintf("▶️ Starting '%s'...", nr.node.Name()))
		}
		err := r.execute(ctx, nr.node.Task)
		nr.duration = time.Since(start)

		if err != nil {
			workerLogger.Error(fmt.Sprintf("❌ '%s' errored after %s", nr.node.Name(), nr.duration.Round(time.Millisecond)), "error", err)
			nr.err = err
			nr.state.Store(int32(Failed))
			r.skipDependents(nr)
			r.wg.Done()
			continue
		}

		nr.state.Store(int32(Done))
		if nr.node.Task.Run != nil {
			workerLogger.Info(fmt.Sprintf("🏁 Finished '%s' after %s", nr.node.Name(), nr.duration.Round(time.Millisecond)))
		}

		for _, dep := range nr.dependents {
			if dep.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent task.", "dependent", dep.node.Name())
				r.readyChan <- dep
			}
		}
		r.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// execute runs the task body, turning a panic into an error.
func (r *run) execute(ctx context.Context, t *registry.Task) (err error) {
	if t.Run == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task '%s' panicked: %v\n%s", t.Name, p, debug.Stack())
		}
	}()
	return t.Run(ctx, r.env)
}

// skipDependents marks every transitive dependent of a failed node as
// skipped. A node reachable through several failed paths is skipped once.
func (r *run) skipDependents(failed *nodeRun) {
	for _, dep := range failed.dependents {
		if dep.state.CompareAndSwap(int32(Pending), int32(Skipped)) {
			dep.err = fmt.Errorf("skipped: prerequisite '%s' did not complete", failed.node.Name())
			r.wg.Done()
			r.skipDependents(dep)
		}
	}
}

// BoundRunner runs tasks of an executor against a fixed environment.
type BoundRunner struct {
	exec *Executor
	env  *registry.Env
}

// Bind returns a registry.Runner that executes tasks with env.
func (e *Executor) Bind(env *registry.Env) *BoundRunner {
	return &BoundRunner{exec: e, env: env}
}

// RunTasks implements registry.Runner.
func (b *BoundRunner) RunTasks(ctx context.Context, names ...string) error {
	_, err := b.exec.Run(ctx, b.env, names...)
	return err
}
