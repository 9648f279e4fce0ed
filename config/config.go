// Package config defines the settings for building and caching collision trees, read from a JSON file.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/cullcore/bounding"
	"go.viam.com/cullcore/collision"
	"go.viam.com/cullcore/logging"
)

// Config describes how collision trees are built and cached.
type Config struct {
	BoundType      string `json:"bound_type"`
	MaxTrisPerLeaf int    `json:"max_tris_per_leaf"`
	TrunkDepth     int    `json:"trunk_depth"`
	Sort           bool   `json:"sort"`
	CacheSize      int    `json:"cache_size"`
	LogLevel       string `json:"log_level,omitempty"`
}

// Default returns AABB trees with eight triangles per leaf, sorted on build, a cache of 64 trees and
// info logging.
func Default() Config {
	opts := collision.DefaultOptions()
	return Config{
		BoundType:      opts.BoundType.String(),
		MaxTrisPerLeaf: opts.MaxTrisPerLeaf,
		TrunkDepth:     opts.TrunkDepth,
		Sort:           opts.Sort,
		CacheSize:      opts.CacheSize,
		LogLevel:       "info",
	}
}

// Validate returns every problem with the config, combined. path names the config in the errors.
func (c *Config) Validate(path string) error {
	var errs error
	if c.BoundType == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "bound_type"))
	} else if _, err := bounding.ParseType(c.BoundType); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	if c.MaxTrisPerLeaf < 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("max_tris_per_leaf must be at least 1, got %d", c.MaxTrisPerLeaf)))
	}
	if c.TrunkDepth < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("trunk_depth cannot be negative, got %d", c.TrunkDepth)))
	}
	if c.CacheSize < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("cache_size cannot be negative, got %d", c.CacheSize)))
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
		}
	}
	return errs
}

// Level returns the configured log level, INFO when unset or unknown.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// ManagerOptions converts the config into collision tree manager options.
func (c *Config) ManagerOptions() (collision.Options, error) {
	typ, err := bounding.ParseType(c.BoundType)
	if err != nil {
		return collision.Options{}, err
	}
	return collision.Options{
		BoundType:      typ,
		MaxTrisPerLeaf: c.MaxTrisPerLeaf,
		TrunkDepth:     c.TrunkDepth,
		Sort:           c.Sort,
		CacheSize:      c.CacheSize,
	}, nil
}

func (c Config) String() string {
	return fmt.Sprintf("bound=%s leaf=%d trunk=%d sort=%t cache=%d", c.BoundType, c.MaxTrisPerLeaf, c.TrunkDepth, c.Sort, c.CacheSize)
}
