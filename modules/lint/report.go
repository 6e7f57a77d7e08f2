package lint

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Reporter renders lint results as a human-readable report.
type Reporter struct {
	w        io.Writer
	file     lipgloss.Style
	pos      lipgloss.Style
	errStyle lipgloss.Style
	warn     lipgloss.Style
	rule     lipgloss.Style
	ok       lipgloss.Style
}

// NewReporter creates a reporter writing to w. Colors are used only when
// w is a terminal that supports them.
func NewReporter(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:        w,
		file:     r.NewStyle().Underline(true),
		pos:      r.NewStyle().Faint(true),
		errStyle: r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("3")),
		rule:     r.NewStyle().Faint(true),
		ok:       r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Render writes the report for one linter. Files without findings are
// omitted; a clean run prints a single summary line.
func (r *Reporter) Render(title string, results []Result) error {
	var b strings.Builder

	for _, res := range results {
		if len(res.Findings) == 0 {
			continue
		}
		width := 0
		for _, f := range res.Findings {
			width = max(width, len(position(f)))
		}

		b.WriteString("\n" + r.file.Render(res.File) + "\n")
		for _, f := range res.Findings {
			sev := r.warn.Render(padRight(f.Severity.String(), 7))
			if f.Severity == Error {
				sev = r.errStyle.Render(padRight(f.Severity.String(), 7))
			}
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				r.pos.Render(padRight(position(f), width)), sev, f.Message, r.rule.Render(f.Rule))
		}
	}

	errs, warnings := Counts(results)
	total := errs + warnings
	switch {
	case total == 0:
		fmt.Fprintf(&b, "%s %s: no problems in %d files\n", r.ok.Render("✔"), title, len(results))
	default:
		summary := fmt.Sprintf("✖ %s: %d %s (%d %s, %d %s)", title,
			total, plural(total, "problem"), errs, plural(errs, "error"), warnings, plural(warnings, "warning"))
		style := r.warn
		if errs > 0 {
			style = r.errStyle
		}
		b.WriteString("\n" + style.Bold(true).Render(summary) + "\n")
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func position(f Finding) string {
	if f.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%d", f.Line, f.Column)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
