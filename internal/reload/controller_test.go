package reload

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner counts runs per task and optionally blocks each run until
// released.
type fakeRunner struct {
	mu      sync.Mutex
	runs    map[string]int
	started chan string
	gate    chan struct{}
}

func newFakeRunner(blocking bool) *fakeRunner {
	f := &fakeRunner{
		runs:    make(map[string]int),
		started: make(chan string, 16),
	}
	if blocking {
		f.gate = make(chan struct{})
	}
	return f
}

func (f *fakeRunner) RunTasks(_ context.Context, names ...string) error {
	for _, n := range names {
		f.started <- n
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.runs[n]++
	}
	return nil
}

func (f *fakeRunner) count(task string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[task]
}

func waitStarted(t *testing.T, f *fakeRunner, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q to start", want)
	}
}

var bindings = []Binding{
	{Pattern: "src/**/*.css", Task: "cssMove-watch"},
	{Pattern: "src/**/*.js", Task: "jsMove-watch"},
	{Pattern: "src/templates/**/*.hbs", Task: "compile-watch"},
}

func TestController_Handle(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	root := t.TempDir()

	t.Run("style change runs only the style binding", func(t *testing.T) {
		// --- Arrange ---
		runner := newFakeRunner(false)
		c := NewController(root, runner, bindings...)

		// --- Act ---
		matched := c.Handle(ctx, filepath.Join(root, "src", "styles", "main.css"))
		c.Wait()

		// --- Assert ---
		assert.True(t, matched)
		assert.Equal(t, 1, runner.count("cssMove-watch"))
		assert.Zero(t, runner.count("jsMove-watch"))
		assert.Zero(t, runner.count("compile-watch"))
		assert.Equal(t, Idle, c.State("cssMove-watch"))
	})

	t.Run("relative paths are accepted", func(t *testing.T) {
		runner := newFakeRunner(false)
		c := NewController(root, runner, bindings...)

		assert.True(t, c.Handle(ctx, "src/templates/index.hbs"))
		c.Wait()
		assert.Equal(t, 1, runner.count("compile-watch"))
	})

	t.Run("unrelated paths are ignored", func(t *testing.T) {
		runner := newFakeRunner(false)
		c := NewController(root, runner, bindings...)

		assert.False(t, c.Handle(ctx, filepath.Join(root, "README.md")))
		c.Wait()
		assert.Zero(t, runner.count("cssMove-watch"))
	})

	t.Run("changes during a rebuild coalesce into one rerun", func(t *testing.T) {
		// --- Arrange ---
		runner := newFakeRunner(true)
		c := NewController(root, runner, bindings...)
		path := filepath.Join(root, "src", "app.js")

		// --- Act ---
		c.Handle(ctx, path)
		waitStarted(t, runner, "jsMove-watch")
		assert.Equal(t, Rebuilding, c.State("jsMove-watch"))

		c.Handle(ctx, path)
		c.Handle(ctx, path)
		c.Handle(ctx, path)
		runner.gate <- struct{}{}

		waitStarted(t, runner, "jsMove-watch")
		runner.gate <- struct{}{}
		c.Wait()

		// --- Assert ---
		assert.Equal(t, 2, runner.count("jsMove-watch"))
		assert.Equal(t, Idle, c.State("jsMove-watch"))
	})

	t.Run("bindings rebuild independently", func(t *testing.T) {
		runner := newFakeRunner(true)
		c := NewController(root, runner, bindings...)

		c.Handle(ctx, "src/app.js")
		waitStarted(t, runner, "jsMove-watch")
		c.Handle(ctx, "src/main.css")
		waitStarted(t, runner, "cssMove-watch")

		assert.Equal(t, Rebuilding, c.State("jsMove-watch"))
		assert.Equal(t, Rebuilding, c.State("cssMove-watch"))
		runner.gate <- struct{}{}
		runner.gate <- struct{}{}
		c.Wait()
		assert.Equal(t, 1, runner.count("jsMove-watch"))
		assert.Equal(t, 1, runner.count("cssMove-watch"))
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "rebuilding", Rebuilding.String())
	assert.Equal(t, "unknown", State(9).String())
}

type countingBroadcaster struct {
	mu sync.Mutex
	n  int
}

func (b *countingBroadcaster) Broadcast(context.Context) error {
	b.mu.Lock()
	b.n++
	b.mu.Unlock()
	return nil
}

func TestSignal(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	var s Signal

	require.NoError(t, s.Broadcast(ctx), "no target attached is not an error")

	b := &countingBroadcaster{}
	detach := s.Attach(b)
	require.NoError(t, s.Broadcast(ctx))
	assert.Equal(t, 1, b.n)

	detach()
	require.NoError(t, s.Broadcast(ctx))
	assert.Equal(t, 1, b.n)
}
