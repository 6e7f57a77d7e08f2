package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the given files (slash paths -> contents) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"gulpfile.js":           "",
		"src/b.js":              "",
		"src/a/a.js":            "",
		"src/style.css":         "",
		"build/script/out.js":   "",
		"node_modules/x/i.js":   "",
		"src/templates/x.hbs":   "",
		"src/templates/y/z.hbs": "",
	})

	t.Run("recursive pattern is sorted", func(t *testing.T) {
		files, err := Glob(root, "src/**/*.js")
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a/a.js", "src/b.js"}, files)
	})

	t.Run("excludes apply to earlier matches", func(t *testing.T) {
		files, err := Glob(root, "**/*.js", "!node_modules/**/*", "!build/**/*")
		require.NoError(t, err)
		assert.Equal(t, []string{"gulpfile.js", "src/a/a.js", "src/b.js"}, files)
	})

	t.Run("duplicates are removed", func(t *testing.T) {
		files, err := Glob(root, "./src/*.js", "src/**/*.js")
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a/a.js", "src/b.js"}, files)
	})

	t.Run("missing base directory matches nothing", func(t *testing.T) {
		files, err := Glob(root, "src/fonts/**/*")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := Glob(root, "src/[.js")
		assert.ErrorContains(t, err, "invalid glob pattern")
	})
}

func TestMatchAndBase(t *testing.T) {
	assert.True(t, Match("src/**/*.css", "src/style.css"))
	assert.True(t, Match("src/**/*.css", "src/blocks/header/header.css"))
	assert.False(t, Match("src/**/*.css", "src/app.js"))
	assert.True(t, Match("./src/templates/**/*.hbs", "src/templates/index.hbs"))

	assert.Equal(t, "src/fonts", Base("src/fonts/**/*"))
	assert.Equal(t, "src/img", Base("./src/img/**/*"))
	assert.Equal(t, "", Base("*.js"))
	assert.Equal(t, "roboto/regular.woff", Rel("src/fonts/**/*", "src/fonts/roboto/regular.woff"))
}

func TestCopyGlob(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves relative structure and bytes", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"src/img/logo.png":       "\x89PNG",
			"src/img/icons/star.svg": "<svg/>",
		})

		n, err := CopyGlob(ctx, root, "src/img/**/*", "build/img")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := os.ReadFile(filepath.Join(root, "build", "img", "icons", "star.svg"))
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(got))

		// Re-running with unchanged sources yields identical output.
		n, err = CopyGlob(ctx, root, "src/img/**/*", "build/img")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		got, err = os.ReadFile(filepath.Join(root, "build", "img", "logo.png"))
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(got))
	})

	t.Run("no sources is a no-op", func(t *testing.T) {
		root := t.TempDir()
		n, err := CopyGlob(ctx, root, "src/fonts/**/*", "build/fonts")
		require.NoError(t, err)
		assert.Zero(t, n)
		_, statErr := os.Stat(filepath.Join(root, "build", "fonts"))
		assert.True(t, os.IsNotExist(statErr))
	})
}
