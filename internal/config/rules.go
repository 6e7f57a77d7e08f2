package config

// RuleSet is a lint rule configuration: rule name to its raw setting, as
// written in an ESLint or stylelint configuration file.
type RuleSet map[string]any
