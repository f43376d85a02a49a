package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "DERISK"

// keys lists every setting so that environment variables resolve even when
// the config file does not mention them.
var keys = []string{
	"log.level", "log.format", "log.output_paths",
	"match.workers", "match.chunk_size",
	"input.candidates", "input.rulebook", "input.targets",
	"output.path", "output.format", "output.no_value", "output.explain",
	"store.path",
	"metrics.namespace", "metrics.textfile",
}

// newViper builds a Viper instance reading YAML with DERISK_ environment
// overrides; "match.workers" resolves to DERISK_MATCH_WORKERS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		// BindEnv only fails without a key.
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges DERISK_* environment
// overrides, applies defaults and validates the result. An empty path
// behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from DERISK_* environment variables only.
//
//	DERISK_<SECTION>_<FIELD>   e.g.  DERISK_MATCH_WORKERS, DERISK_STORE_PATH
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
