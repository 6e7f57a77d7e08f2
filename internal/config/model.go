package config

// Settings is the complete, read-only configuration of a build invocation.
// It is produced once at startup and handed to every module unchanged.
type Settings struct {
	Paths    Paths
	Scripts  Scripts
	Styles   Styles
	Template Template
	Server   Server
	Lint     Lint

	// Production enables minification in the script and style pipelines.
	// It is derived once from NODE_ENV and never read from the environment again.
	Production bool
}

// Paths is the path registry. Globs and directories are relative to the
// project root and always use forward slashes.
type Paths struct {
	SrcRoot string

	Templates    string
	TemplatesDir string
	RootTemplate string
	TemplateVars string

	Scripts string
	Styles  string
	Fonts   string
	Images  string

	BuildDir   string
	ScriptsOut string
	StylesOut  string
	FontsOut   string
	ImagesOut  string

	PageName    string
	ScriptsName string
	StylesName  string
}

// Scripts holds options for the script pipeline.
type Scripts struct {
	// Target is the language baseline the concatenated unit is transpiled to.
	Target string
}

// Styles holds options for the style transform chain.
type Styles struct {
	// Engines are the browser targets used for nesting lowering, feature
	// polyfilling and prefixing, written as name+version ("chrome58").
	Engines []string
	// AssetBase is the URL prefix written in front of resolved asset paths.
	AssetBase string
	// AssetLoadPaths are searched in order when resolving asset references.
	AssetLoadPaths []string
}

// Template holds extra template variables declared in the config file.
type Template struct {
	Vars map[string]any
}

// Server holds dev server options.
type Server struct {
	Host string
	Port int
}

// Lint holds lint task inputs.
type Lint struct {
	// Scripts is an ordered glob list; entries starting with "!" exclude.
	Scripts     []string
	ScriptRules string
	StyleRules  string
}

// Default returns the settings that reproduce the project's filesystem layout.
func Default() *Settings {
	return &Settings{
		Paths: DefaultPaths(),
		Scripts: Scripts{
			Target: "es2015",
		},
		Styles: Styles{
			Engines:        []string{"chrome58", "firefox57", "safari11", "edge16"},
			AssetBase:      "/",
			AssetLoadPaths: []string{"src", "build"},
		},
		Template: Template{
			Vars: map[string]any{},
		},
		Server: Server{
			Host: "localhost",
			Port: 3000,
		},
		Lint: Lint{
			Scripts:     []string{"*.js", "src/**/*.js", "!node_modules/**/*", "!build/**/*"},
			ScriptRules: "eslintrc.json",
			StyleRules:  "stylelintrc.json",
		},
	}
}

// DefaultPaths returns the default path registry.
func DefaultPaths() Paths {
	return Paths{
		SrcRoot: "src",

		Templates:    "src/templates/**/*.hbs",
		TemplatesDir: "src/templates",
		RootTemplate: "index.hbs",
		TemplateVars: "src/templates/variables.json",

		Scripts: "src/**/*.js",
		Styles:  "src/**/*.css",
		Fonts:   "src/fonts/**/*",
		Images:  "src/img/**/*",

		BuildDir:   "build",
		ScriptsOut: "build/script",
		StylesOut:  "build/style",
		FontsOut:   "build/fonts",
		ImagesOut:  "build/img",

		PageName:    "index.html",
		ScriptsName: "index.min.js",
		StylesName:  "index.min.css",
	}
}
