// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses `sitebuild.hcl`, decodes its blocks with gohcl and
// overlays every attribute that is set on top of the default settings.
// Template variables are evaluated as cty values and converted to plain Go
// values before they reach the template compiler.
package hcl
