package lint

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(root string, out *bytes.Buffer) *registry.Env {
	return &registry.Env{
		Root:        root,
		Settings:    config.Default(),
		ScriptRules: config.RuleSet{"no-var": "error", "no-console": "warn"},
		StyleRules:  config.RuleSet{"block-no-empty": true},
		Out:         out,
	}
}

func TestLintScripts(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	t.Run("reports findings and excludes ignored directories", func(t *testing.T) {
		// --- Arrange ---
		root := t.TempDir()
		writeFile(t, root, "gulpfile.js", "const a = 1;\n")
		writeFile(t, root, "src/app.js", "var a = 1;\nconsole.log(a);\n")
		writeFile(t, root, "node_modules/dep/index.js", "var x;\n")
		writeFile(t, root, "build/script/index.min.js", "var y;\n")
		var out bytes.Buffer

		// --- Act ---
		err := LintScripts(ctx, newEnv(root, &out))

		// --- Assert ---
		require.NoError(t, err)
		report := out.String()
		assert.Contains(t, report, "src/app.js")
		assert.Contains(t, report, "Unexpected var, use let or const instead.")
		assert.Contains(t, report, "2 problems (1 error, 1 warning)")
		assert.NotContains(t, report, "node_modules")
		assert.NotContains(t, report, "build/script")
		assert.NotContains(t, report, "gulpfile.js", "clean files are omitted")
	})

	t.Run("clean run succeeds", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "src/app.js", "const a = 1;\n")
		var out bytes.Buffer

		require.NoError(t, LintScripts(ctx, newEnv(root, &out)))
		assert.Contains(t, out.String(), "eslint: no problems in 1 files")
	})

	t.Run("invalid rules never fail the task", func(t *testing.T) {
		root := t.TempDir()
		env := newEnv(root, &bytes.Buffer{})
		env.ScriptRules = config.RuleSet{"no-var": "loud"}

		assert.NoError(t, LintScripts(ctx, env))
	})
}

func TestLintStyles(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	root := t.TempDir()
	writeFile(t, root, "src/blocks/empty.css", "a {}\n")
	writeFile(t, root, "src/main.css", "body { margin: 0; }\n")
	var out bytes.Buffer

	require.NoError(t, LintStyles(ctx, newEnv(root, &out)))

	report := out.String()
	assert.Contains(t, report, "src/blocks/empty.css")
	assert.Contains(t, report, "Unexpected empty block (block-no-empty)")
	assert.Contains(t, report, "stylelint: 1 problem (1 error, 0 warnings)")
}

type fixedChecker []Finding

func (c fixedChecker) Check(file string, _ []byte) []Finding {
	out := make([]Finding, len(c))
	for i, f := range c {
		f.File = file
		out[i] = f
	}
	return out
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "a.js", "x")
	writeFile(t, root, "b.js", "y")
	checker := fixedChecker{{Line: 1, Column: 1, Rule: "r", Severity: Warning}}

	results := Run(ctx, root, []string{"b.js", "a.js", "missing.js"}, checker)

	require.Len(t, results, 3)
	assert.Equal(t, "b.js", results[0].File)
	assert.Equal(t, "a.js", results[1].Findings[0].File)
	require.Len(t, results[2].Findings, 1)
	assert.Equal(t, "io", results[2].Findings[0].Rule)

	errs, warnings := Counts(results)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warnings)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestReporter(t *testing.T) {
	var out bytes.Buffer
	results := []Result{
		{File: "a.css", Findings: []Finding{
			{Line: 12, Column: 3, Rule: "block-no-empty", Severity: Error, Message: "Unexpected empty block"},
			{Line: 2, Column: 10, Rule: "color-hex-case", Severity: Warning, Message: "Expected lower case"},
		}},
		{File: "b.css"},
	}

	require.NoError(t, NewReporter(&out).Render("stylelint", results))

	assert.Equal(t, "\na.css\n"+
		"  12:3  error    Unexpected empty block  block-no-empty\n"+
		"  2:10  warning  Expected lower case  color-hex-case\n"+
		"\n✖ stylelint: 2 problems (1 error, 1 warning)\n", out.String())

	assert.Error(t, NewReporter(failingWriter{}).Render("x", nil))
}
