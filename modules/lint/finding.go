package lint

import "sort"

// Finding is one reported problem.
type Finding struct {
	File     string
	Line     int
	Column   int
	Rule     string
	Severity Severity
	Message  string
}

// Result holds the findings of one file.
type Result struct {
	File     string
	Findings []Finding
}

// sortFindings orders findings by position, then rule name.
func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Line != fs[j].Line {
			return fs[i].Line < fs[j].Line
		}
		if fs[i].Column != fs[j].Column {
			return fs[i].Column < fs[j].Column
		}
		return fs[i].Rule < fs[j].Rule
	})
}

// Counts returns the number of error and warning findings in results.
func Counts(results []Result) (errs, warnings int) {
	for _, r := range results {
		for _, f := range r.Findings {
			switch f.Severity {
			case Error:
				errs++
			case Warning:
				warnings++
			}
		}
	}
	return errs, warnings
}
