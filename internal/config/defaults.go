package config

import "github.com/cognicore/derisk/pkg/derisk"

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultChunkSize = derisk.DefaultChunkSize

	DefaultOutputFormat = FormatCSV

	DefaultMetricsNamespace = "derisk"
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	if cfg.Match.ChunkSize == 0 {
		cfg.Match.ChunkSize = DefaultChunkSize
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
