package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/fsutil"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/aymerick/raymond"
)

// TaskName is the name of the template compile task.
const TaskName = "compile"

// ErrRootTemplateMissing is returned when the page's root template does not exist.
var ErrRootTemplateMissing = errors.New("root template missing")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the compile task.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        TaskName,
		Description: "Render the root Handlebars template into the page.",
		Run:         Compile,
	})
}

var partialRef = regexp.MustCompile(`\{\{~?#?>\s*(?:"([^"]+)"|'([^']+)'|([^\s}~()"']+))`)

// partialRefs returns the statically named partials referenced by source.
func partialRefs(source string) []string {
	var names []string
	for _, m := range partialRef.FindAllStringSubmatch(source, -1) {
		names = append(names, m[1]+m[2]+m[3])
	}
	return names
}

// Renderer compiles a root template against a batch of partials.
type Renderer struct {
	Root  string
	Batch *Batch
}

// Render executes the template at rootPath with data.
func (r *Renderer) Render(ctx context.Context, rootPath string, data map[string]any) (string, error) {
	logger := ctxlog.FromContext(ctx)

	source, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(rootPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRootTemplateMissing, rootPath)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rootPath, err)
	}

	tpl, err := raymond.Parse(string(source))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rootPath, err)
	}

	registered := make(map[string]struct{})
	refs := partialRefs(string(source))
	for _, p := range r.Batch.Partials() {
		src, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(p.Path)))
		if err != nil {
			return "", fmt.Errorf("reading partial %s: %w", p.Path, err)
		}
		if _, err := raymond.Parse(string(src)); err != nil {
			return "", fmt.Errorf("parsing partial %s: %w", p.Path, err)
		}
		tpl.RegisterPartial(p.Name, string(src))
		registered[p.Name] = struct{}{}
		refs = append(refs, partialRefs(string(src))...)
	}
	logger.Debug("Partials registered.", "count", len(registered), "dirs", r.Batch.Dirs)

	for _, name := range refs {
		if _, ok := registered[name]; ok {
			continue
		}
		logger.Warn("Partial not found, rendering it as empty.", "partial", name)
		tpl.RegisterPartial(name, "")
		registered[name] = struct{}{}
	}

	out, err := tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", rootPath, err)
	}
	return out, nil
}

// Compile discovers the template batch, renders the root template with the
// template context and writes the page into the build directory.
func Compile(ctx context.Context, env *registry.Env) error {
	logger := ctxlog.FromContext(ctx)
	paths := env.Settings.Paths

	batch, err := Discover(env.Root, paths.Templates)
	if err != nil {
		return err
	}
	logger.Debug("Template batch discovered.", "dirs", len(batch.Dirs), "files", len(batch.Files))

	r := &Renderer{Root: env.Root, Batch: batch}
	rootPath := path.Join(paths.TemplatesDir, paths.RootTemplate)
	html, err := r.Render(ctx, rootPath, templateData(env))
	if err != nil {
		return err
	}

	dest := filepath.Join(env.Root, filepath.FromSlash(paths.BuildDir), paths.PageName)
	if err := fsutil.WriteFile(dest, []byte(html)); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	logger.Info("✅ Page compiled.", "template", rootPath, "output", dest)
	return nil
}

// templateData merges the config file's template vars over the loaded
// variables. Neither input is modified.
func templateData(env *registry.Env) map[string]any {
	data := make(map[string]any, len(env.TemplateContext)+len(env.Settings.Template.Vars))
	for k, v := range env.TemplateContext {
		data[k] = v
	}
	for k, v := range env.Settings.Template.Vars {
		data[k] = v
	}
	return data
}

// LoadContext reads the JSON template variables file. A missing file
// yields an empty context.
func LoadContext(root, rel string) (map[string]any, bool, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading template variables: %w", err)
	}
	ctx, err := decodeContext(data)
	if err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", rel, err)
	}
	return ctx, true, nil
}

func decodeContext(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if strings.TrimSpace(string(data)) == "" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
