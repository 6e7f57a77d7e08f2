package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration file at path and overlays it on top of
	// base. A missing file is not an error; base is returned unchanged.
	Load(ctx context.Context, path string, base *Settings) (*Settings, error)
}
