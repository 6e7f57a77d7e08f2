package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/config"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// styleOptions are the compiled settings of the enabled style rules.
type styleOptions struct {
	invalidHex     Severity
	hexCase        Severity
	hexCaseWant    string
	emptyBlock     Severity
	duplicateProps Severity
	important      Severity
	maxID          Severity
	maxIDCount     int
}

// StyleLinter checks stylesheets against a compiled stylelint-style rule set.
type StyleLinter struct {
	opts    styleOptions
	enabled []string
}

// NewStyleLinter compiles the enabled rules of rules. Unknown rule names
// are ignored; malformed settings are errors.
func NewStyleLinter(ctx context.Context, rules config.RuleSet) (*StyleLinter, error) {
	logger := ctxlog.FromContext(ctx)
	l := &StyleLinter{}

	for _, name := range sortedRuleNames(rules) {
		s, err := parseStyleSetting(rules[name])
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		if s.Severity == Off {
			continue
		}
		switch name {
		case "color-no-invalid-hex":
			l.opts.invalidHex = s.Severity
		case "color-hex-case":
			want, _ := s.Primary.(string)
			if want != "lower" && want != "upper" {
				return nil, fmt.Errorf("rule %s: option must be \"lower\" or \"upper\"", name)
			}
			l.opts.hexCase, l.opts.hexCaseWant = s.Severity, want
		case "block-no-empty":
			l.opts.emptyBlock = s.Severity
		case "declaration-block-no-duplicate-properties":
			l.opts.duplicateProps = s.Severity
		case "declaration-no-important":
			l.opts.important = s.Severity
		case "selector-max-id":
			n, ok := asInt(s.Primary)
			if !ok || n < 0 {
				return nil, fmt.Errorf("rule %s: option must be a non-negative number", name)
			}
			l.opts.maxID, l.opts.maxIDCount = s.Severity, n
		default:
			logger.Debug("Style rule not supported, ignoring.", "rule", name)
			continue
		}
		l.enabled = append(l.enabled, name)
	}
	return l, nil
}

// Rules returns the names of the enabled rules.
func (l *StyleLinter) Rules() []string {
	return append([]string{}, l.enabled...)
}

// locator turns tokens back into positions by searching forward in the
// source from the last located token. Matching ignores case.
type locator struct {
	src   []byte
	lower []byte
	pos   int
}

func newLocator(src []byte) *locator {
	return &locator{src: src, lower: asciiLower(src)}
}

func (l *locator) find(needle []byte) (line, col int) {
	if len(needle) > 0 {
		if i := bytes.Index(l.lower[l.pos:], asciiLower(needle)); i >= 0 {
			l.pos += i
		}
	}
	before := l.src[:l.pos]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = l.pos - (bytes.LastIndexByte(before, '\n') + 1) + 1
	l.pos += len(needle)
	return line, col
}

// asciiLower lowercases ASCII letters only, so offsets stay valid.
func asciiLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

type block struct {
	line, col int
	empty     bool
	props     map[string]bool
}

// Check lints one stylesheet. Syntax errors are always reported.
func (l *StyleLinter) Check(file string, src []byte) []Finding {
	var findings []Finding
	add := func(line, col int, rule string, sev Severity, format string, args ...any) {
		findings = append(findings, Finding{
			File: file, Line: line, Column: col, Rule: rule, Severity: sev,
			Message: fmt.Sprintf(format, args...) + " (" + rule + ")",
		})
	}

	result := api.Transform(string(src), api.TransformOptions{Loader: api.LoaderCSS, Sourcefile: file})
	for _, m := range result.Errors {
		f := Finding{File: file, Rule: "syntax", Severity: Error, Message: m.Text}
		if m.Location != nil {
			f.Line, f.Column = m.Location.Line, m.Location.Column+1
		}
		findings = append(findings, f)
	}

	loc := newLocator(src)
	p := css.NewParser(parse.NewInput(bytes.NewReader(src)), false)
	var stack []*block

	checkSelector := func(values []css.Token) {
		if l.opts.maxID == Off {
			return
		}
		ids := 0
		for i, t := range values {
			if t.TokenType == css.HashToken {
				ids++
			}
			if t.TokenType == css.CommaToken || i == len(values)-1 {
				if ids > l.opts.maxIDCount {
					line, col := loc.find(nil)
					add(line, col, "selector-max-id", l.opts.maxID,
						"Expected selector to have no more than %d ID selectors", l.opts.maxIDCount)
				}
				ids = 0
			}
		}
	}

	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if err := p.Err(); err != nil {
				if !errors.Is(err, io.EOF) && len(result.Errors) == 0 {
					line, col := loc.find(nil)
					findings = append(findings, Finding{File: file, Line: line, Column: col, Rule: "syntax", Severity: Error, Message: err.Error()})
				}
				break
			}
			continue
		}

		if len(stack) > 0 && gt != css.EndRulesetGrammar && gt != css.EndAtRuleGrammar && gt != css.CommentGrammar {
			stack[len(stack)-1].empty = false
		}

		switch gt {
		case css.QualifiedRuleGrammar:
			values := p.Values()
			if len(values) > 0 {
				loc.find(values[0].Data)
			}
			checkSelector(values)
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			values := p.Values()
			var line, col int
			if gt == css.BeginAtRuleGrammar {
				line, col = loc.find(data)
			} else if len(values) > 0 {
				line, col = loc.find(values[0].Data)
			} else {
				line, col = loc.find(nil)
			}
			if gt == css.BeginRulesetGrammar {
				checkSelector(values)
			}
			stack = append(stack, &block{line: line, col: col, empty: true, props: map[string]bool{}})
		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			if len(stack) == 0 {
				continue
			}
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			loc.find([]byte("}"))
			if b.empty && l.opts.emptyBlock != Off {
				add(b.line, b.col, "block-no-empty", l.opts.emptyBlock, "Unexpected empty block")
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			line, col := loc.find(data)
			prop := strings.ToLower(string(data))
			values := p.Values()

			if len(stack) > 0 && gt == css.DeclarationGrammar && l.opts.duplicateProps != Off {
				props := stack[len(stack)-1].props
				if props[prop] {
					add(line, col, "declaration-block-no-duplicate-properties", l.opts.duplicateProps,
						"Unexpected duplicate %q", prop)
				}
				props[prop] = true
			}
			l.checkValues(values, line, col, add)
		}
	}

	sortFindings(findings)
	return findings
}

func (l *StyleLinter) checkValues(values []css.Token, line, col int, add func(int, int, string, Severity, string, ...any)) {
	for i, t := range values {
		switch t.TokenType {
		case css.HashToken:
			hex := strings.TrimPrefix(string(t.Data), "#")
			valid := isHex(hex) && (len(hex) == 3 || len(hex) == 4 || len(hex) == 6 || len(hex) == 8)
			if !valid {
				if l.opts.invalidHex != Off {
					add(line, col, "color-no-invalid-hex", l.opts.invalidHex, "Unexpected invalid hex color %q", string(t.Data))
				}
				continue
			}
			if l.opts.hexCase != Off {
				want := strings.ToLower(hex)
				if l.opts.hexCaseWant == "upper" {
					want = strings.ToUpper(hex)
				}
				if hex != want {
					add(line, col, "color-hex-case", l.opts.hexCase, "Expected %q to be %q", string(t.Data), "#"+want)
				}
			}
		case css.DelimToken:
			if string(t.Data) != "!" || l.opts.important == Off {
				continue
			}
			for _, next := range values[i+1:] {
				if next.TokenType == css.WhitespaceToken {
					continue
				}
				if next.TokenType == css.IdentToken && strings.EqualFold(string(next.Data), "important") {
					add(line, col, "declaration-no-important", l.opts.important, "Unexpected !important")
				}
				break
			}
		}
	}
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
