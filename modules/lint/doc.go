// Package lint provides the advisory lint tasks. Script files are checked
// against ESLint-style rule settings and stylesheets against stylelint-style
// settings. Findings are rendered as a report on the task output; they never
// fail a task or affect the exit status.
package lint
