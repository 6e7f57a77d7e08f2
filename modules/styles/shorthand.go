package styles

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/pipeline"
)

var (
	sizeDecl     = regexp.MustCompile(`^(\s*)size\s*:\s*([^;{}]+?)\s*(!important)?\s*;?\s*$`)
	positionDecl = regexp.MustCompile(`^(\s*)position\s*:\s*(static|relative|absolute|fixed|sticky)\s+([^;{}]+?)\s*(!important)?\s*;?\s*$`)
)

var boxSides = []string{"top", "right", "bottom", "left"}

// Shorthand expands the "size" and extended "position" shorthands into
// longhand declarations. Expansions stay on the line of the shorthand so
// existing source maps remain valid.
func Shorthand() pipeline.Stage {
	return pipeline.StageFunc{Label: "shorthand", Fn: func(_ context.Context, f pipeline.File) (pipeline.File, error) {
		lines := bytes.Split(f.Contents, []byte{'\n'})
		for i, line := range lines {
			expanded, err := expandLine(string(line))
			if err != nil {
				return pipeline.File{}, fmt.Errorf("line %d: %w", i+1, err)
			}
			lines[i] = []byte(expanded)
		}
		f.Contents = bytes.Join(lines, []byte{'\n'})
		return f, nil
	}}
}

func expandLine(line string) (string, error) {
	if m := sizeDecl.FindStringSubmatch(line); m != nil {
		values := splitValues(m[2])
		if len(values) > 2 {
			return "", fmt.Errorf("size takes one or two values, got %d", len(values))
		}
		height := values[0]
		if len(values) == 2 {
			height = values[1]
		}
		return m[1] + decl("width", values[0], m[3]) + " " + decl("height", height, m[3]), nil
	}

	if m := positionDecl.FindStringSubmatch(line); m != nil {
		values := splitValues(m[3])
		if len(values) > 4 {
			return "", fmt.Errorf("position takes at most four offsets, got %d", len(values))
		}
		parts := []string{decl("position", m[2], m[4])}
		for i, v := range boxValues(values) {
			if v == "*" {
				continue
			}
			parts = append(parts, decl(boxSides[i], v, m[4]))
		}
		return m[1] + strings.Join(parts, " "), nil
	}

	return line, nil
}

func decl(prop, value, important string) string {
	if important != "" {
		return prop + ": " + value + " " + important + ";"
	}
	return prop + ": " + value + ";"
}

// boxValues expands one to four values with the usual top/right/bottom/left
// repetition rules.
func boxValues(v []string) [4]string {
	switch len(v) {
	case 1:
		return [4]string{v[0], v[0], v[0], v[0]}
	case 2:
		return [4]string{v[0], v[1], v[0], v[1]}
	case 3:
		return [4]string{v[0], v[1], v[2], v[1]}
	default:
		return [4]string{v[0], v[1], v[2], v[3]}
	}
}

// splitValues splits a declaration value on whitespace outside parentheses.
func splitValues(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
