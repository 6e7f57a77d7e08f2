package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// environ supplies the variables exposed as `env.*` inside the file.
	environ func() []string
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// Load parses the file at path and overlays every attribute it sets onto a
// copy of base. A missing file yields base unchanged.
func (l *Loader) Load(ctx context.Context, path string, base *config.Settings) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	settings := clone(base)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Config file not found, using defaults.", "path", path)
			return settings, nil
		}
		return nil, fmt.Errorf("error accessing config file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, l.evalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	applyPaths(&settings.Paths, root.Paths)
	if root.Scripts != nil {
		setString(&settings.Scripts.Target, root.Scripts.Target)
	}
	if root.Styles != nil {
		setStrings(&settings.Styles.Engines, root.Styles.Engines)
		setString(&settings.Styles.AssetBase, root.Styles.AssetBase)
		setStrings(&settings.Styles.AssetLoadPaths, root.Styles.AssetLoadPaths)
	}
	if root.Server != nil {
		setString(&settings.Server.Host, root.Server.Host)
		if root.Server.Port != nil {
			settings.Server.Port = *root.Server.Port
		}
	}
	if root.Lint != nil {
		setStrings(&settings.Lint.Scripts, root.Lint.Scripts)
		setString(&settings.Lint.ScriptRules, root.Lint.ScriptRules)
		setString(&settings.Lint.StyleRules, root.Lint.StyleRules)
	}
	if root.Template != nil && !root.Template.Vars.IsNull() {
		vars, err := templateVars(root.Template.Vars)
		if err != nil {
			return nil, fmt.Errorf("invalid template vars in %s: %w", path, err)
		}
		for k, v := range vars {
			settings.Template.Vars[k] = v
		}
	}

	logger.Debug("HCL loading complete.", "template_vars", len(settings.Template.Vars), "engines", settings.Styles.Engines)
	return settings, nil
}

// evalContext exposes the process environment as the `env` object so that
// values such as `env.ANALYTICS_ID` can be referenced from the file.
func (l *Loader) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range l.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func applyPaths(p *config.Paths, b *pathsBlock) {
	if b == nil {
		return
	}
	setString(&p.SrcRoot, b.SrcRoot)
	setString(&p.Templates, b.Templates)
	setString(&p.TemplatesDir, b.TemplatesDir)
	setString(&p.RootTemplate, b.RootTemplate)
	setString(&p.TemplateVars, b.TemplateVars)
	setString(&p.Scripts, b.Scripts)
	setString(&p.Styles, b.Styles)
	setString(&p.Fonts, b.Fonts)
	setString(&p.Images, b.Images)
	setString(&p.BuildDir, b.BuildDir)
	setString(&p.ScriptsOut, b.ScriptsOut)
	setString(&p.StylesOut, b.StylesOut)
	setString(&p.FontsOut, b.FontsOut)
	setString(&p.ImagesOut, b.ImagesOut)
	setString(&p.PageName, b.PageName)
	setString(&p.ScriptsName, b.ScriptsName)
	setString(&p.StylesName, b.StylesName)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string(nil), (*src)...)
	}
}

// clone returns a copy of s whose slices and maps can be modified freely.
func clone(s *config.Settings) *config.Settings {
	out := *s
	out.Styles.Engines = append([]string(nil), s.Styles.Engines...)
	out.Styles.AssetLoadPaths = append([]string(nil), s.Styles.AssetLoadPaths...)
	out.Lint.Scripts = append([]string(nil), s.Lint.Scripts...)
	out.Template.Vars = make(map[string]any, len(s.Template.Vars))
	for k, v := range s.Template.Vars {
		out.Template.Vars[k] = v
	}
	return &out
}
