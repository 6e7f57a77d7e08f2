package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes every top-level block a config file may contain. Each
// block is optional and may appear at most once.
type fileRoot struct {
	Paths    *pathsBlock    `hcl:"paths,block"`
	Scripts  *scriptsBlock  `hcl:"scripts,block"`
	Styles   *stylesBlock   `hcl:"styles,block"`
	Template *templateBlock `hcl:"template,block"`
	Server   *serverBlock   `hcl:"server,block"`
	Lint     *lintBlock     `hcl:"lint,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

type pathsBlock struct {
	SrcRoot      *string `hcl:"src_root,optional"`
	Templates    *string `hcl:"templates,optional"`
	TemplatesDir *string `hcl:"templates_dir,optional"`
	RootTemplate *string `hcl:"root_template,optional"`
	TemplateVars *string `hcl:"template_vars,optional"`
	Scripts      *string `hcl:"scripts,optional"`
	Styles       *string `hcl:"styles,optional"`
	Fonts        *string `hcl:"fonts,optional"`
	Images       *string `hcl:"images,optional"`
	BuildDir     *string `hcl:"build_dir,optional"`
	ScriptsOut   *string `hcl:"scripts_out,optional"`
	StylesOut    *string `hcl:"styles_out,optional"`
	FontsOut     *string `hcl:"fonts_out,optional"`
	ImagesOut    *string `hcl:"images_out,optional"`
	PageName     *string `hcl:"page_name,optional"`
	ScriptsName  *string `hcl:"scripts_name,optional"`
	StylesName   *string `hcl:"styles_name,optional"`
}

type scriptsBlock struct {
	Target *string `hcl:"target,optional"`
}

type stylesBlock struct {
	Engines        *[]string `hcl:"engines,optional"`
	AssetBase      *string   `hcl:"asset_base,optional"`
	AssetLoadPaths *[]string `hcl:"asset_load_paths,optional"`
}

type templateBlock struct {
	Vars cty.Value `hcl:"vars,optional"`
}

type serverBlock struct {
	Host *string `hcl:"host,optional"`
	Port *int    `hcl:"port,optional"`
}

type lintBlock struct {
	Scripts     *[]string `hcl:"scripts,optional"`
	ScriptRules *string   `hcl:"script_rules,optional"`
	StyleRules  *string   `hcl:"style_rules,optional"`
}
