// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration comes from.
	LoadOptions struct {
		// ConfigFilePath forces a specific file; it must exist.
		ConfigFilePath string
		// ConfigDirPath replaces the user configuration directory.
		ConfigDirPath string
		// SkipEnv ignores TOPOMAP_* variables.
		SkipEnv bool
	}

	// Loaded is a configuration and the file it came from, empty when only
	// defaults and environment applied.
	Loaded struct {
		Config *Config
		Path   string
	}

	// Provider loads configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	fileProvider struct{}
)

// NewProvider returns the file-backed provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load implements Provider.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}
