package app

import (
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/assets"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/browsersync"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/composite"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/lint"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/scripts"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/styles"
	"github.com/WebHeroSchool/laleniko-personal-page/modules/templates"
)

// coreModules is the definitive list of all modules that are compiled into
// the sitebuild binary.
var coreModules = []registry.Module{
	&scripts.Module{},
	&styles.Module{},
	&templates.Module{},
	&assets.Module{},
	&lint.Module{},
	&browsersync.Module{},
	&composite.Module{},
}
