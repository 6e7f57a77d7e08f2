// Package config defines the format-agnostic build settings: the path
// registry, per-pipeline options, dev server options and the production flag.
//
// The `config.Settings` value is the single source of truth for every task
// module. Concrete loaders, such as the HCL one, live in separate packages and
// only ever produce a Settings value.
package config
