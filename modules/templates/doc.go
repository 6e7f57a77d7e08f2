// Package templates compiles the site's Handlebars templates into the
// final page.
//
// Partial discovery follows a batch model: at task start the template glob
// is expanded once and the distinct parent directories of the matches form
// the batch. Every discovered template is registered as a partial under its
// path relative to each batch directory that contains it, without the
// extension. The first registration of a name wins. References to partials
// that do not exist render as empty.
package templates
