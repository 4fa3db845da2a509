// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/spf13/afero"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// BaseDir is searched after the config directory. Empty means the
	// working directory.
	BaseDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
}

type fileProvider struct {
	fs afero.Fs
}

// NewProvider creates a configuration provider reading from fsys. A nil fsys
// uses the OS filesystem.
func NewProvider(fsys afero.Fs) Provider {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &fileProvider{fs: fsys}
}

// Load reads configuration from the requested source and reports the path
// it came from ("" when only defaults applied).
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, p.fs, opts)
}

// StaticProvider returns cfg for every load. Tests and embedders that build
// their configuration in code use it.
type StaticProvider struct {
	Config *Config
	Path   string
}

// Load returns the fixed configuration, or the defaults when Config is nil.
func (p StaticProvider) Load(_ context.Context, _ LoadOptions) (*Config, string, error) {
	if p.Config == nil {
		return DefaultConfig(), p.Path, nil
	}
	return p.Config, p.Path, nil
}
