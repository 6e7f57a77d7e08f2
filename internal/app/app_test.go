package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/devserver"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/hcl"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/reload"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/browsersync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// project writes a small site under a fresh root.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, root, "src/templates/index.hbs", "<html><body>{{> header}}<p>{{title}}</p></body></html>\n")
	WriteFile(t, root, "src/templates/header.hbs", "<h1>{{title}}</h1>")
	WriteFile(t, root, "src/templates/variables.json", `{"title": "Hello"}`)
	WriteFile(t, root, "src/a.js", "const greet = (name) => `hi ${name}`;\n")
	WriteFile(t, root, "src/b.js", "console.log(greet('there'));\n")
	WriteFile(t, root, "src/styles/main.css", "a {\n  color: red;\n  size: 10px 20px;\n}\n")
	WriteFile(t, root, "src/fonts/sub/font.woff", "font-bytes")
	WriteFile(t, root, "src/img/logo.png", "png-bytes")
	return root
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func unsetNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	require.NoError(t, os.Unsetenv("NODE_ENV"))
}

func TestApp_Build(t *testing.T) {
	unsetNodeEnv(t)

	t.Run("writes every output", func(t *testing.T) {
		// --- Arrange ---
		root := project(t)
		a, _ := SetupAppTest(t, root)

		// --- Act ---
		err := a.Run(context.Background(), "build")

		// --- Assert ---
		require.NoError(t, err)
		assert.Contains(t, read(t, root, "build/index.html"), "<h1>Hello</h1><p>Hello</p>")
		assert.Contains(t, read(t, root, "build/script/index.min.js"), "sourceMappingURL=index.min.js.map")
		assert.FileExists(t, filepath.Join(root, "build/script/index.min.js.map"))
		css := read(t, root, "build/style/index.min.css")
		assert.Contains(t, css, "width: 10px")
		assert.Contains(t, css, "height: 20px")
		assert.FileExists(t, filepath.Join(root, "build/style/index.min.css.map"))
		assert.Equal(t, "font-bytes", read(t, root, "build/fonts/sub/font.woff"))
		assert.Equal(t, "png-bytes", read(t, root, "build/img/logo.png"))
	})

	t.Run("rebuilding is idempotent", func(t *testing.T) {
		root := project(t)
		a, _ := SetupAppTest(t, root)
		outputs := []string{"build/index.html", "build/script/index.min.js", "build/style/index.min.css"}

		require.NoError(t, a.Run(context.Background(), "build"))
		first := map[string]string{}
		for _, rel := range outputs {
			first[rel] = read(t, root, rel)
		}
		require.NoError(t, a.Run(context.Background(), "build"))

		for _, rel := range outputs {
			assert.Equal(t, first[rel], read(t, root, rel), rel)
		}
	})

	t.Run("prod output is never larger than dev output", func(t *testing.T) {
		root := project(t)
		a, _ := SetupAppTest(t, root)

		require.NoError(t, a.Run(context.Background(), "build"))
		devJS, devCSS := read(t, root, "build/script/index.min.js"), read(t, root, "build/style/index.min.css")
		require.NoError(t, a.Run(context.Background(), "prod"))
		prodJS, prodCSS := read(t, root, "build/script/index.min.js"), read(t, root, "build/style/index.min.css")

		assert.LessOrEqual(t, len(prodJS), len(devJS))
		assert.LessOrEqual(t, len(prodCSS), len(devCSS))
		assert.False(t, a.Env().Settings.Production, "prod does not leak into later runs")
	})

	t.Run("missing root template fails only the page", func(t *testing.T) {
		root := project(t)
		require.NoError(t, os.Remove(filepath.Join(root, "src/templates/index.hbs")))
		a, logs := SetupAppTest(t, root)

		err := a.Run(context.Background(), "build")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "root template")
		assert.FileExists(t, filepath.Join(root, "build/script/index.min.js"))
		assert.FileExists(t, filepath.Join(root, "build/style/index.min.css"))
		assert.NoFileExists(t, filepath.Join(root, "build/index.html"))
		assert.Contains(t, logs.String(), "Task skipped.")
	})

	t.Run("unknown task fails before anything runs", func(t *testing.T) {
		root := project(t)
		a, _ := SetupAppTest(t, root)

		err := a.Run(context.Background(), "nope", "jsMove")

		require.Error(t, err)
		assert.NoDirExists(t, filepath.Join(root, "build"))
	})
}

func TestApp_StyleChangeReloadsOnlyStyles(t *testing.T) {
	unsetNodeEnv(t)

	// --- Arrange ---
	ctx := ctxlog.Discard(context.Background())
	root := project(t)
	a, _ := SetupAppTest(t, root)
	require.NoError(t, a.Run(context.Background(), "build"))
	script, page := read(t, root, "build/script/index.min.js"), read(t, root, "build/index.html")

	env := a.Env()
	srv := devserver.New(filepath.Join(root, "build"), "127.0.0.1:0")
	_, err := srv.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(ctx) })
	detach := env.Reload.Attach(srv)
	t.Cleanup(detach)

	WriteFile(t, root, "src/styles/main.css", "a {\n  color: blue;\n}\n")
	controller := reload.NewController(env.Root, env.Runner, browsersync.Bindings(env)...)

	// --- Act ---
	err = env.Runner.RunTasks(ctx, browsersync.StylesWatch)
	matched := controller.Handle(ctx, filepath.Join(root, "src", "styles", "main.css"))
	controller.Wait()

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, reload.Idle, controller.State(browsersync.StylesWatch))
	assert.Contains(t, read(t, root, "build/style/index.min.css"), "blue")
	assert.Equal(t, script, read(t, root, "build/script/index.min.js"))
	assert.Equal(t, page, read(t, root, "build/index.html"))
}

func TestApp_Lint(t *testing.T) {
	unsetNodeEnv(t)

	// --- Arrange ---
	root := project(t)
	WriteFile(t, root, "eslintrc.json", `{"rules": {"no-var": "error"}}`)
	WriteFile(t, root, "stylelintrc.json", `{"rules": {"block-no-empty": true}}`)
	WriteFile(t, root, "src/bad.js", "var x = 1;\n")
	WriteFile(t, root, "src/styles/empty.css", "p {}\n")
	a, out := SetupAppTest(t, root)

	// --- Act ---
	err := a.Run(context.Background(), "lint")

	// --- Assert ---
	require.NoError(t, err, "lint findings never fail a run")
	assert.Contains(t, out.String(), "src/bad.js")
	assert.Contains(t, out.String(), "src/styles/empty.css")
}

func TestNewApp(t *testing.T) {
	unsetNodeEnv(t)

	t.Run("production comes from the env file", func(t *testing.T) {
		t.Setenv("NODE_ENV", "")
		require.NoError(t, os.Unsetenv("NODE_ENV"))
		root := project(t)
		WriteFile(t, root, ".env", "NODE_ENV=production\n")

		a, _ := SetupAppTest(t, root)

		assert.True(t, a.Env().Settings.Production)
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		root := project(t)
		WriteFile(t, root, "sitebuild.hcl", "server {\n  port = 4000\n}\n")

		a, _ := SetupAppTest(t, root)

		assert.Equal(t, 4000, a.Env().Settings.Server.Port)
		assert.NotNil(t, a.Env().Runner)
		assert.NotNil(t, a.Env().Reload)
	})

	for name, files := range map[string]map[string]string{
		"unparseable config":   {"sitebuild.hcl": "server {\n"},
		"malformed rule set":   {"eslintrc.json": `{"rules": {"no-var": "sometimes"}}`},
		"malformed style rule": {"stylelintrc.json": `{"rules": {"color-hex-case": "sideways"}}`},
		"broken variables":     {"src/templates/variables.json": "{"},
	} {
		t.Run(name+" is a startup error", func(t *testing.T) {
			root := project(t)
			for rel, content := range files {
				WriteFile(t, root, rel, content)
			}
			cfg, err := NewConfig(Config{Root: root, ConfigPath: "sitebuild.hcl", EnvFile: ".env", Workers: 1})
			require.NoError(t, err)

			_, err = NewApp(&SafeBuffer{}, cfg, hcl.NewLoader())

			assert.Error(t, err)
		})
	}
}

func TestApp_List(t *testing.T) {
	unsetNodeEnv(t)
	a, out := SetupAppTest(t, project(t))

	require.NoError(t, a.List())

	for _, name := range []string{"build", "dev", "prod", "lint", "browser-sync", "cssMove-watch", "clean"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{Workers: 1})
	assert.Error(t, err)
	_, err = NewConfig(Config{Root: ".", Workers: 0})
	assert.Error(t, err)
	cfg, err := NewConfig(Config{Root: ".", Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}
