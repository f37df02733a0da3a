// Package config loads and persists devsweep settings.
package config

import (
	"fmt"

	"github.com/devsweep/devsweep/pkg/size"
)

// Config is the persisted user configuration.
type Config struct {
	Version      string    `mapstructure:"version" yaml:"version"`
	MaxDepth     int       `mapstructure:"max_depth" yaml:"max_depth"`
	UseGitignore bool      `mapstructure:"use_gitignore" yaml:"use_gitignore"`
	MinSize      string    `mapstructure:"min_size" yaml:"min_size,omitempty"`
	Patterns     []Pattern `mapstructure:"patterns" yaml:"patterns,omitempty"`
	PostClean    []string  `mapstructure:"post_clean" yaml:"post_clean,omitempty"`
}

// Pattern is a user-defined addition to the built-in catalog.
type Pattern struct {
	Key         string `mapstructure:"key" yaml:"key"`
	Description string `mapstructure:"description" yaml:"description"`
}

const maxDepthCeiling = 64

func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	if c.MaxDepth < 1 || c.MaxDepth > maxDepthCeiling {
		return fmt.Errorf("max_depth must be between 1 and %d", maxDepthCeiling)
	}

	if c.MinSize != "" {
		if _, err := size.ParseSize(c.MinSize); err != nil {
			return fmt.Errorf("min_size: %w", err)
		}
	}

	for i, p := range c.Patterns {
		if p.Key == "" {
			return fmt.Errorf("pattern %d: key is required", i)
		}
		if p.Description == "" {
			return fmt.Errorf("pattern %q: description is required", p.Key)
		}
	}

	return nil
}

// MinSizeBytes returns the parsed min_size threshold, zero when unset.
func (c *Config) MinSizeBytes() int64 {
	if c.MinSize == "" {
		return 0
	}
	bytes, err := size.ParseSize(c.MinSize)
	if err != nil {
		return 0
	}
	return bytes
}
