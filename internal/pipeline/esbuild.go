package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/evanw/esbuild/pkg/api"
)

// Esbuild is a Stage running every file through esbuild's transform API.
// Input source maps are forwarded so the output map points at the
// original sources.
type Esbuild struct {
	Label   string
	Options api.TransformOptions
}

// Name implements Stage.
func (s Esbuild) Name() string { return s.Label }

// Transform implements Stage.
func (s Esbuild) Transform(ctx context.Context, files []File) ([]File, error) {
	logger := ctxlog.FromContext(ctx)
	css := s.Options.Loader == api.LoaderCSS

	out := make([]File, 0, len(files))
	for _, f := range files {
		input := string(f.Contents)
		if f.Map != nil {
			input += inlineMapComment(f.Map, css)
		}

		opts := s.Options
		opts.Sourcefile = f.Path
		opts.Sourcemap = api.SourceMapExternal

		result := api.Transform(input, opts)
		for _, w := range result.Warnings {
			logger.Debug("esbuild warning.", "stage", s.Label, "file", f.Path, "warning", FormatMessage(w))
		}
		if len(result.Errors) > 0 {
			return nil, &TransformError{File: f.Path, Messages: result.Errors}
		}
		out = append(out, File{Path: f.Path, Contents: result.Code, Map: result.Map})
	}
	return out, nil
}

// TransformError reports the esbuild errors for one file.
type TransformError struct {
	File     string
	Messages []api.Message
}

func (e *TransformError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		parts = append(parts, FormatMessage(m))
	}
	return fmt.Sprintf("%s: %s", e.File, strings.Join(parts, "; "))
}

// FormatMessage renders an esbuild message as "line:col: text".
func FormatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column+1, m.Text)
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// ParseTarget maps a language baseline such as "es2015" to an esbuild target.
func ParseTarget(s string) (api.Target, error) {
	t, ok := targets[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown script target %q", s)
	}
	return t, nil
}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

var enginePattern = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+)*)$`)

// ErrNoEngines is returned by ParseEngines for an empty engine list.
var ErrNoEngines = errors.New("no browser engines configured")

// ParseEngines maps targets written as name+version ("chrome58") to
// esbuild engines.
func ParseEngines(specs []string) ([]api.Engine, error) {
	if len(specs) == 0 {
		return nil, ErrNoEngines
	}
	engines := make([]api.Engine, 0, len(specs))
	for _, spec := range specs {
		m := enginePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(spec)))
		if m == nil {
			return nil, fmt.Errorf("malformed engine %q, want name+version like chrome58", spec)
		}
		name, ok := engineNames[m[1]]
		if !ok {
			return nil, fmt.Errorf("unknown engine %q", m[1])
		}
		engines = append(engines, api.Engine{Name: name, Version: m[2]})
	}
	return engines, nil
}
