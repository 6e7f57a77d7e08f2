package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root       string // project directory
	ConfigPath string // sitebuild.hcl, relative to Root unless absolute
	EnvFile    string // .env, relative to Root unless absolute

	LogFormat string
	LogLevel  string
	Workers   int
	// Port overrides the dev server port from the config file when positive.
	Port int

	Tasks []string
	List  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("workers must be at least 1")
	}
	if cfg.Port < 0 {
		return nil, errors.New("port must not be negative")
	}
	return &cfg, nil
}
