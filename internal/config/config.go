// Package config loads machomodel's on-disk defaults (~/.config/machomodel/
// config.yaml), giving dump/diff flags a persistent fallback so repeated
// invocations against the same reverse-engineering project don't need to
// repeat the same flags every time.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type dumpDefaults struct {
	Theme         string `mapstructure:"theme"`
	VTables       bool   `mapstructure:"vtables"`
	FreeFunctions bool   `mapstructure:"free-functions"`
}

type diffDefaults struct {
	MinConfidence float64 `mapstructure:"min-confidence"`
}

// Config is the on-disk configuration struct, unmarshaled from viper.
type Config struct {
	Dump dumpDefaults `mapstructure:"dump"`
	Diff diffDefaults `mapstructure:"diff"`
}

func (c *Config) verify() error {
	if c.Diff.MinConfidence < 0 || c.Diff.MinConfidence > 1 {
		return fmt.Errorf("config: diff.min-confidence must be between 0 and 1, got %f", c.Diff.MinConfidence)
	}
	if c.Dump.Theme == "" {
		c.Dump.Theme = "nord"
	}
	return nil
}

// LoadConfig loads the configuration file already read into viper by
// initConfig, filling in defaults for anything the file and flags left
// unset.
func LoadConfig() (*Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %w", err)
	}
	return &c, nil
}
