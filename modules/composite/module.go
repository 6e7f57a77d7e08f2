// Package composite registers the user-facing tasks that only group others.
package composite

import (
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/browsersync"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers build, dev, prod and lint.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.Task{
		Name:        "build",
		Description: "Build every output into the build directory.",
		Deps:        []string{"jsMove", "cssMove", "compile", "fontsMove", "imgMove"},
	})
	// dev serves only once the build has finished.
	r.RegisterTask(&registry.Task{
		Name:        "dev",
		Description: "Build, then serve with live reload until interrupted.",
		Deps:        []string{"build"},
		Run:         browsersync.Serve,
	})
	r.RegisterTask(&registry.Task{
		Name:        "prod",
		Description: "Build with minification.",
		Deps:        []string{"build"},
		Production:  true,
	})
	r.RegisterTask(&registry.Task{
		Name:        "lint",
		Description: "Run the script and style linters.",
		Deps:        []string{"eslint", "stylelint"},
	})
}
