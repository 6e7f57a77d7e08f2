package styles

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/pipeline"
	"github.com/evanw/esbuild/pkg/api"
)

// prefixRule says that engine needs prefix for a declaration below version.
type prefixRule struct {
	engine api.EngineName
	below  float64
	prefix string
}

// propertyPrefixes lists the properties that still need vendor prefixes in
// some supported engine.
var propertyPrefixes = map[string][]prefixRule{
	"appearance": {
		{api.EngineChrome, 84, "-webkit-"},
		{api.EngineEdge, 84, "-webkit-"},
		{api.EngineSafari, 15.4, "-webkit-"},
		{api.EngineIOS, 15.4, "-webkit-"},
		{api.EngineFirefox, 80, "-moz-"},
	},
	"user-select": {
		{api.EngineChrome, 54, "-webkit-"},
		{api.EngineSafari, 999, "-webkit-"},
		{api.EngineIOS, 999, "-webkit-"},
		{api.EngineFirefox, 69, "-moz-"},
		{api.EngineEdge, 79, "-ms-"},
		{api.EngineIE, 999, "-ms-"},
	},
	"backdrop-filter": {
		{api.EngineSafari, 18, "-webkit-"},
		{api.EngineIOS, 18, "-webkit-"},
	},
	"text-size-adjust": {
		{api.EngineSafari, 999, "-webkit-"},
		{api.EngineIOS, 999, "-webkit-"},
		{api.EngineFirefox, 999, "-moz-"},
		{api.EngineEdge, 79, "-ms-"},
	},
	"hyphens": {
		{api.EngineSafari, 17, "-webkit-"},
		{api.EngineIOS, 17, "-webkit-"},
		{api.EngineEdge, 79, "-ms-"},
		{api.EngineIE, 999, "-ms-"},
	},
	"tab-size": {
		{api.EngineFirefox, 91, "-moz-"},
	},
	"mask-image": {
		{api.EngineChrome, 120, "-webkit-"},
		{api.EngineEdge, 120, "-webkit-"},
		{api.EngineSafari, 15.4, "-webkit-"},
	},
	"clip-path": {
		{api.EngineChrome, 55, "-webkit-"},
		{api.EngineSafari, 13.1, "-webkit-"},
		{api.EngineIOS, 13.1, "-webkit-"},
	},
}

// valuePrefixes lists keyword values that need a prefixed fallback.
var valuePrefixes = map[string]map[string][]prefixRule{
	"position": {
		"sticky": {
			{api.EngineSafari, 13, "-webkit-"},
			{api.EngineIOS, 13, "-webkit-"},
		},
	},
}

var declLine = regexp.MustCompile(`^(\s*)([a-z-]+)\s*:\s*([^;{}]+?)\s*;?\s*$`)

// prefixesFor returns the distinct prefixes the rules require for engines,
// in rule order.
func prefixesFor(rules []prefixRule, engines []api.Engine) []string {
	var out []string
	seen := make(map[string]bool)
	for _, rule := range rules {
		if seen[rule.prefix] {
			continue
		}
		for _, e := range engines {
			if e.Name == rule.engine && version(e.Version) < rule.below {
				seen[rule.prefix] = true
				out = append(out, rule.prefix)
				break
			}
		}
	}
	return out
}

func version(s string) float64 {
	major, minor, _ := strings.Cut(s, ".")
	if minor != "" {
		major += "." + strings.SplitN(minor, ".", 2)[0]
	}
	v, err := strconv.ParseFloat(major, 64)
	if err != nil {
		return 0
	}
	return v
}

// Prefixer adds vendor-prefixed declarations in front of unprefixed ones
// when a configured engine needs them. A prefixed declaration already
// present in the same block is not duplicated. Additions stay on the line
// of the original declaration.
func Prefixer(engines []api.Engine) pipeline.Stage {
	return pipeline.StageFunc{Label: "prefix", Fn: func(_ context.Context, f pipeline.File) (pipeline.File, error) {
		lines := bytes.Split(f.Contents, []byte{'\n'})
		block := make(map[string]bool)

		for i, raw := range lines {
			line := string(raw)
			if strings.ContainsAny(line, "{}") {
				clear(block)
				continue
			}
			m := declLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			indent, prop, value := m[1], m[2], m[3]
			block[prop+":"+value] = true
			block[prop] = true

			var extra []string
			for _, p := range prefixesFor(propertyPrefixes[prop], engines) {
				if !block[p+prop] {
					extra = append(extra, p+prop+": "+value+";")
				}
			}
			for _, p := range prefixesFor(valuePrefixes[prop][value], engines) {
				if !block[prop+":"+p+value] {
					extra = append(extra, prop+": "+p+value+";")
				}
			}
			if len(extra) > 0 {
				lines[i] = []byte(indent + strings.Join(extra, " ") + " " + prop + ": " + value + ";")
			}
		}
		f.Contents = bytes.Join(lines, []byte{'\n'})
		return f, nil
	}}
}
