package dag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the order in which task bodies ran.
type recorder struct {
	mu    sync.Mutex
	order []string
	count map[string]int
}

func newRecorder() *recorder {
	return &recorder{count: make(map[string]int)}
}

func (r *recorder) fn(name string, err error) registry.TaskFunc {
	return func(context.Context, *registry.Env) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.count[name]++
		r.mu.Unlock()
		return err
	}
}

func (r *recorder) index(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.order {
		if n == name {
			return i
		}
	}
	return -1
}

func buildExecutor(t *testing.T, workers int, tasks ...*registry.Task) *Executor {
	t.Helper()
	r := registry.New()
	for _, tk := range tasks {
		r.RegisterTask(tk)
	}
	g, err := Build(ctxlog.Discard(context.Background()), r)
	require.NoError(t, err)
	return NewExecutor(g, workers)
}

func testEnv() *registry.Env {
	return &registry.Env{Settings: config.Default()}
}

func TestExecutor_Run(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	t.Run("prerequisites run first and shared ones run once", func(t *testing.T) {
		// --- Arrange ---
		rec := newRecorder()
		exec := buildExecutor(t, 4,
			&registry.Task{Name: "clean", Run: rec.fn("clean", nil)},
			&registry.Task{Name: "compile", Deps: []string{"clean"}, Run: rec.fn("compile", nil)},
			&registry.Task{Name: "jsMove", Deps: []string{"clean"}, Run: rec.fn("jsMove", nil)},
			&registry.Task{Name: "build", Deps: []string{"compile", "jsMove"}},
		)

		// --- Act ---
		report, err := exec.Run(ctx, testEnv(), "build")

		// --- Assert ---
		require.NoError(t, err)
		assert.True(t, report.Succeeded())
		assert.Equal(t, 1, rec.count["clean"])
		assert.Less(t, rec.index("clean"), rec.index("compile"))
		assert.Less(t, rec.index("clean"), rec.index("jsMove"))
		assert.Len(t, report.Results, 4)
	})

	t.Run("only the closure runs", func(t *testing.T) {
		rec := newRecorder()
		exec := buildExecutor(t, 2,
			&registry.Task{Name: "a", Run: rec.fn("a", nil)},
			&registry.Task{Name: "b", Run: rec.fn("b", nil)},
		)

		_, err := exec.Run(ctx, testEnv(), "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, rec.order)
	})

	t.Run("failure skips dependents but not siblings", func(t *testing.T) {
		// --- Arrange ---
		boom := errors.New("boom")
		rec := newRecorder()
		exec := buildExecutor(t, 1,
			&registry.Task{Name: "bad", Run: rec.fn("bad", boom)},
			&registry.Task{Name: "good", Run: rec.fn("good", nil)},
			&registry.Task{Name: "after", Deps: []string{"bad"}, Run: rec.fn("after", nil)},
			&registry.Task{Name: "last", Deps: []string{"after", "good"}, Run: rec.fn("last", nil)},
		)

		// --- Act ---
		report, err := exec.Run(ctx, testEnv(), "last")

		// --- Assert ---
		require.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "task 'bad'")
		assert.Equal(t, 1, rec.count["good"])
		assert.Zero(t, rec.count["after"])
		assert.Zero(t, rec.count["last"])

		after, ok := report.Result("after")
		require.True(t, ok)
		assert.Equal(t, Skipped, after.State)
		last, _ := report.Result("last")
		assert.Equal(t, Skipped, last.State)
		good, _ := report.Result("good")
		assert.Equal(t, Done, good.State)
	})

	t.Run("panics become errors", func(t *testing.T) {
		exec := buildExecutor(t, 1, &registry.Task{
			Name: "explode",
			Run:  func(context.Context, *registry.Env) error { panic("kaboom") },
		})

		report, err := exec.Run(ctx, testEnv(), "explode")
		require.Error(t, err)
		assert.ErrorContains(t, err, "panicked: kaboom")
		res, _ := report.Result("explode")
		assert.Equal(t, Failed, res.State)
	})

	t.Run("independent tasks run concurrently", func(t *testing.T) {
		// --- Arrange ---
		var inFlight, peak atomic.Int32
		release := make(chan struct{})
		slow := func(context.Context, *registry.Env) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			if n == 2 {
				close(release)
			}
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			inFlight.Add(-1)
			return nil
		}
		exec := buildExecutor(t, 4,
			&registry.Task{Name: "x", Run: slow},
			&registry.Task{Name: "y", Run: slow},
		)

		// --- Act ---
		_, err := exec.Run(ctx, testEnv(), "x", "y")

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, int32(2), peak.Load())
	})

	t.Run("production task forces the flag for the whole run", func(t *testing.T) {
		// --- Arrange ---
		var seen atomic.Bool
		exec := buildExecutor(t, 2,
			&registry.Task{Name: "jsMove", Run: func(_ context.Context, env *registry.Env) error {
				seen.Store(env.Settings.Production)
				return nil
			}},
			&registry.Task{Name: "prod", Deps: []string{"jsMove"}, Production: true},
		)
		env := testEnv()

		// --- Act ---
		_, err := exec.Run(ctx, env, "prod")

		// --- Assert ---
		require.NoError(t, err)
		assert.True(t, seen.Load())
		assert.False(t, env.Settings.Production, "caller's settings must not change")
	})

	t.Run("cancelled context skips pending tasks", func(t *testing.T) {
		rec := newRecorder()
		exec := buildExecutor(t, 1, &registry.Task{Name: "a", Run: rec.fn("a", nil)})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		report, err := exec.Run(cctx, testEnv(), "a")
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, rec.order)
		res, _ := report.Result("a")
		assert.Equal(t, Skipped, res.State)
	})

	t.Run("unknown target", func(t *testing.T) {
		exec := buildExecutor(t, 1, &registry.Task{Name: "a", Run: newRecorder().fn("a", nil)})
		_, err := exec.Run(ctx, testEnv(), "nope")
		assert.ErrorIs(t, err, ErrUnknownTask)
	})

	t.Run("bound runner", func(t *testing.T) {
		rec := newRecorder()
		exec := buildExecutor(t, 1, &registry.Task{Name: "a", Run: rec.fn("a", nil)})
		var runner registry.Runner = exec.Bind(testEnv())

		require.NoError(t, runner.RunTasks(ctx, "a"))
		require.NoError(t, runner.RunTasks(ctx, "a"))
		assert.Equal(t, 2, rec.count["a"])
	})
}
