package browsersync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/reload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordingRunner) RunTasks(_ context.Context, names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, names...)
	return nil
}

func (r *recordingRunner) ran(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.runs {
		if n == name {
			return true
		}
	}
	return false
}

type countingBroadcaster struct {
	mu sync.Mutex
	n  int
}

func (b *countingBroadcaster) Broadcast(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	return nil
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	for name, dep := range map[string]string{StylesWatch: "cssMove", ScriptsWatch: "jsMove", TemplatesWatch: "compile"} {
		task, ok := r.Task(name)
		require.True(t, ok, name)
		assert.Equal(t, []string{dep}, task.Deps)
	}
	_, ok := r.Task(TaskName)
	assert.True(t, ok)
}

func TestReload(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	b := &countingBroadcaster{}
	signal := &reload.Signal{}
	signal.Attach(b)

	require.NoError(t, Reload(ctx, &registry.Env{Reload: signal}))
	require.NoError(t, Reload(ctx, &registry.Env{}))
	assert.Equal(t, 1, b.n)
}

func TestServe(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	t.Run("style changes trigger the style watch task", func(t *testing.T) {
		// --- Arrange ---
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "styles"), 0o755))
		settings := config.Default()
		settings.Server.Host, settings.Server.Port = "127.0.0.1", 0
		runner := &recordingRunner{}
		env := &registry.Env{Root: root, Settings: settings, Runner: runner, Reload: &reload.Signal{}}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- Serve(runCtx, env) }()

		// --- Act ---
		css := filepath.Join(root, "src", "styles", "main.css")
		require.Eventually(t, func() bool {
			_ = os.WriteFile(css, []byte("a{}"), 0o644)
			return runner.ran(StylesWatch)
		}, 5*time.Second, 50*time.Millisecond)
		cancel()

		// --- Assert ---
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
		assert.False(t, runner.ran(ScriptsWatch))
	})

	t.Run("missing source directory is an error", func(t *testing.T) {
		settings := config.Default()
		settings.Server.Host, settings.Server.Port = "127.0.0.1", 0
		env := &registry.Env{Root: t.TempDir(), Settings: settings, Runner: &recordingRunner{}}

		err := Serve(ctx, env)
		assert.ErrorContains(t, err, "watching")
	})

	t.Run("runner is required", func(t *testing.T) {
		err := Serve(ctx, &registry.Env{Settings: config.Default()})
		assert.ErrorContains(t, err, "task runner")
	})
}
