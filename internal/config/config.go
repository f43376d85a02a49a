// Package config provides configuration loading, defaults, and validation for
// the derisk command.
package config

import (
	"fmt"

	"github.com/cognicore/derisk/internal/logging"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
)

// Config is the root configuration.
type Config struct {
	Log     logging.Config `mapstructure:"log" yaml:"log"`
	Match   MatchConfig    `mapstructure:"match" yaml:"match"`
	Input   InputConfig    `mapstructure:"input" yaml:"input"`
	Output  OutputConfig   `mapstructure:"output" yaml:"output"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store"`
	Metrics MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// MatchConfig tunes the classification worker pool.
type MatchConfig struct {
	// Workers <= 0 means one per CPU.
	Workers   int `mapstructure:"workers" yaml:"workers"`
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// InputConfig names the vocabulary and target files.
type InputConfig struct {
	Candidates string `mapstructure:"candidates" yaml:"candidates"`
	Rulebook   string `mapstructure:"rulebook" yaml:"rulebook"`
	Targets    string `mapstructure:"targets" yaml:"targets"`
}

// OutputConfig controls how the augmented table is written.
type OutputConfig struct {
	// Path is the output file; empty means stdout.
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`

	// NoValue is written in CSV cells for absent results.
	NoValue string `mapstructure:"no_value" yaml:"no_value"`
	Explain bool   `mapstructure:"explain" yaml:"explain"`
}

// StoreConfig enables run persistence when Path is set.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetricsConfig enables the metrics textfile when Textfile is set.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	Textfile  string `mapstructure:"textfile" yaml:"textfile"`
}

// Validate performs semantic validation of the fully-populated Config.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is invalid; expected debug|info|warn|error: %w", c.Log.Level, internalerr.ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is invalid; expected json|console: %w", c.Log.Format, internalerr.ErrInvalidConfig)
	}

	// Match
	if c.Match.ChunkSize < 1 {
		return fmt.Errorf("match.chunk_size must be >= 1, got %d: %w", c.Match.ChunkSize, internalerr.ErrInvalidConfig)
	}

	// Output
	switch c.Output.Format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("output.format %q is invalid; expected csv|json: %w", c.Output.Format, internalerr.ErrInvalidConfig)
	}

	// Metrics
	if c.Metrics.Textfile != "" && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required with metrics.textfile: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}
