package lint

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/evanw/esbuild/pkg/api"
)

// scriptRule checks one script. code has comments and string contents
// blanked out; raw is the file as written. Both are split into lines.
type scriptRule struct {
	name     string
	severity Severity
	check    func(code, raw []string) []Finding
}

// ScriptLinter checks scripts against a compiled ESLint-style rule set.
type ScriptLinter struct {
	rules []scriptRule
}

type scriptRuleFactory func(opts []any) (func(code, raw []string) []Finding, error)

var scriptRules = map[string]scriptRuleFactory{
	"no-debugger":        pattern(`(^|[^\w$.])(debugger)\b`, "Unexpected 'debugger' statement."),
	"no-var":             pattern(`(^|[^\w$.])(var)\s`, "Unexpected var, use let or const instead."),
	"no-alert":           alertRule,
	"no-console":         consoleRule,
	"eqeqeq":             eqeqeqRule,
	"no-trailing-spaces": trailingSpacesRule,
	"max-len":            maxLenRule,
}

// NewScriptLinter compiles the enabled rules of rules. Unknown rule names
// are ignored; malformed settings are errors.
func NewScriptLinter(ctx context.Context, rules config.RuleSet) (*ScriptLinter, error) {
	logger := ctxlog.FromContext(ctx)
	l := &ScriptLinter{}

	for _, name := range sortedRuleNames(rules) {
		setting, err := parseScriptSetting(rules[name])
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		factory, ok := scriptRules[name]
		if !ok {
			logger.Debug("Script rule not supported, ignoring.", "rule", name)
			continue
		}
		if setting.Severity == Off {
			continue
		}
		check, err := factory(setting.Options)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		l.rules = append(l.rules, scriptRule{name: name, severity: setting.Severity, check: check})
	}
	return l, nil
}

// Rules returns the names of the enabled rules.
func (l *ScriptLinter) Rules() []string {
	names := make([]string, 0, len(l.rules))
	for _, r := range l.rules {
		names = append(names, r.name)
	}
	return names
}

// Check lints one script. Syntax errors are always reported.
func (l *ScriptLinter) Check(file string, src []byte) []Finding {
	var findings []Finding

	result := api.Transform(string(src), api.TransformOptions{Loader: api.LoaderJS, Sourcefile: file})
	for _, m := range result.Errors {
		f := Finding{File: file, Rule: "syntax", Severity: Error, Message: m.Text}
		if m.Location != nil {
			f.Line, f.Column = m.Location.Line, m.Location.Column+1
		}
		findings = append(findings, f)
	}

	raw := strings.Split(string(src), "\n")
	for i := range raw {
		raw[i] = strings.TrimSuffix(raw[i], "\r")
	}
	code := strings.Split(blankScript(string(src)), "\n")
	for _, r := range l.rules {
		for _, f := range r.check(code, raw) {
			f.File, f.Rule, f.Severity = file, r.name, r.severity
			findings = append(findings, f)
		}
	}
	sortFindings(findings)
	return findings
}

// blankScript replaces the contents of comments and string, template and
// regular expression literals with spaces. Quotes and newlines are kept so
// positions do not move.
func blankScript(src string) string {
	out := []byte(src)
	const (
		code = iota
		lineComment
		blockComment
		quoted
	)
	state := code
	var quote byte
	prevSignificant := byte(0)

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
				continue
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i], out[i+1] = ' ', ' '
				i++
				continue
			case c == '"' || c == '\'' || c == '`':
				state, quote = quoted, c
			case c == '/' && regexAllowed(prevSignificant):
				state, quote = quoted, '/'
			}
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				prevSignificant = c
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case quoted:
			switch {
			case c == '\\' && i+1 < len(out):
				out[i] = ' '
				if out[i+1] != '\n' {
					out[i+1] = ' '
				}
				i++
			case c == quote:
				state = code
				prevSignificant = c
			case c == '\n' && quote != '`':
				state = code
			case c != '\n':
				out[i] = ' '
			}
		}
	}
	return string(out)
}

// regexAllowed reports whether a slash after prev starts a regular
// expression literal rather than a division.
func regexAllowed(prev byte) bool {
	if prev == 0 {
		return true
	}
	return strings.IndexByte("(,=:[!&|?{};+-*%<>~^", prev) >= 0
}

func pattern(expr, message string) scriptRuleFactory {
	re := regexp.MustCompile(expr)
	return func([]any) (func(code, raw []string) []Finding, error) {
		return func(code, _ []string) []Finding {
			var out []Finding
			for i, line := range code {
				for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
					out = append(out, Finding{Line: i + 1, Column: m[4] + 1, Message: message})
				}
			}
			return out
		}, nil
	}
}

var alertCall = regexp.MustCompile(`(^|[^\w$.])(alert|confirm|prompt)\s*\(`)

func alertRule([]any) (func(code, raw []string) []Finding, error) {
	return func(code, _ []string) []Finding {
		var out []Finding
		for i, line := range code {
			for _, m := range alertCall.FindAllStringSubmatchIndex(line, -1) {
				name := line[m[4]:m[5]]
				out = append(out, Finding{Line: i + 1, Column: m[4] + 1, Message: fmt.Sprintf("Unexpected %s.", name)})
			}
		}
		return out
	}, nil
}

var consoleCall = regexp.MustCompile(`(^|[^\w$.])(console)\s*\.\s*([\w$]+)`)

func consoleRule(opts []any) (func(code, raw []string) []Finding, error) {
	allowed := map[string]bool{}
	if len(opts) > 0 {
		m, ok := asMap(opts[0])
		if !ok {
			return nil, fmt.Errorf("options must be an object")
		}
		if list, ok := m["allow"].([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok {
					allowed[s] = true
				}
			}
		}
	}
	return func(code, _ []string) []Finding {
		var out []Finding
		for i, line := range code {
			for _, m := range consoleCall.FindAllStringSubmatchIndex(line, -1) {
				if allowed[line[m[6]:m[7]]] {
					continue
				}
				out = append(out, Finding{Line: i + 1, Column: m[4] + 1, Message: "Unexpected console statement."})
			}
		}
		return out
	}, nil
}

var (
	equality   = regexp.MustCompile(`!==|===|!=|==`)
	nullBefore = regexp.MustCompile(`\bnull\s*$`)
	nullAfter  = regexp.MustCompile(`^\s*null\b`)
)

func eqeqeqRule(opts []any) (func(code, raw []string) []Finding, error) {
	mode := "always"
	if len(opts) > 0 {
		s, ok := opts[0].(string)
		if !ok || (s != "always" && s != "smart") {
			return nil, fmt.Errorf("option must be \"always\" or \"smart\"")
		}
		mode = s
	}
	return func(code, _ []string) []Finding {
		var out []Finding
		for i, line := range code {
			for _, m := range equality.FindAllStringIndex(line, -1) {
				op := line[m[0]:m[1]]
				if len(op) == 3 {
					continue
				}
				if mode == "smart" && (nullBefore.MatchString(line[:m[0]]) || nullAfter.MatchString(line[m[1]:])) {
					continue
				}
				out = append(out, Finding{
					Line:    i + 1,
					Column:  m[0] + 1,
					Message: fmt.Sprintf("Expected '%s=' and instead saw '%s'.", op, op),
				})
			}
		}
		return out
	}, nil
}

func trailingSpacesRule([]any) (func(code, raw []string) []Finding, error) {
	return func(_, raw []string) []Finding {
		var out []Finding
		for i, line := range raw {
			trimmed := strings.TrimRight(line, " \t")
			if len(trimmed) != len(line) {
				out = append(out, Finding{Line: i + 1, Column: len(trimmed) + 1, Message: "Trailing spaces not allowed."})
			}
		}
		return out
	}, nil
}

func maxLenRule(opts []any) (func(code, raw []string) []Finding, error) {
	limit := 80
	if len(opts) > 0 {
		if n, ok := asInt(opts[0]); ok {
			limit = n
		} else if m, ok := asMap(opts[0]); ok {
			if n, ok := asInt(m["code"]); ok {
				limit = n
			}
		} else {
			return nil, fmt.Errorf("option must be a number or an object")
		}
	}
	if limit <= 0 {
		return nil, fmt.Errorf("maximum line length must be positive")
	}
	return func(_, raw []string) []Finding {
		var out []Finding
		for i, line := range raw {
			if n := utf8.RuneCountInString(line); n > limit {
				out = append(out, Finding{
					Line:    i + 1,
					Column:  1,
					Message: fmt.Sprintf("This line has a length of %d. Maximum allowed is %d.", n, limit),
				})
			}
		}
		return out
	}, nil
}

func sortedRuleNames(rules config.RuleSet) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
