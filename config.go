package pdata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding Config fields.
const EnvPrefix = "PDATA_"

// Config holds the settings of a pdata server. It is read from a YAML or
// JSONC file and then overridden from PDATA_* environment variables.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// Address is the address the server listens on.
	Address string `yaml:"address" env:"ADDRESS"`
	// StorePath is the SQLite database player data is saved in. Empty
	// disables persistence.
	StorePath string `yaml:"store_path" env:"STORE_PATH"`
	// StoreTimeout bounds every store call.
	StoreTimeout time.Duration `yaml:"store_timeout" env:"STORE_TIMEOUT"`
	// StoreRequired refuses players whose data cannot be loaded.
	StoreRequired bool `yaml:"store_required" env:"STORE_REQUIRED"`
	// AutosaveInterval is how often online players are saved. Zero disables
	// autosaving; players are still saved when they quit.
	AutosaveInterval time.Duration `yaml:"autosave_interval" env:"AUTOSAVE_INTERVAL"`
	// ImmutableCache enables sharing of immutable values.
	ImmutableCache bool `yaml:"immutable_cache" env:"IMMUTABLE_CACHE"`
	// DisabledTraits lists traits whose processors are not registered.
	DisabledTraits []string `yaml:"disabled_traits" env:"DISABLED_TRAITS" envSeparator:","`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		Address:          ":19132",
		StorePath:        "pdata.db",
		StoreTimeout:     5 * time.Second,
		AutosaveInterval: 5 * time.Minute,
		ImmutableCache:   true,
	}
}

// LoadConfig reads the configuration file at path on top of DefaultConfig and
// applies environment overrides. A missing file is not an error. Files ending
// in .json or .jsonc are read as JSON with comments, anything else as YAML.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := decodeConfig(path, b, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse config env: %w", err)
	}
	return cfg, nil
}

// decodeConfig decodes b into cfg based on the extension of path.
func decodeConfig(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is valid YAML, so both formats share the yaml tags.
		b = jsonc.ToJSON(b)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Level returns the slog level of LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// TraitEnabled reports whether the trait with the given name is enabled.
func (c Config) TraitEnabled(name string) bool {
	return !slices.Contains(c.DisabledTraits, name)
}

// StoreOptions returns the store options described by the config.
func (c Config) StoreOptions() []StoreOption {
	opts := []StoreOption{WithRequired(c.StoreRequired)}
	if c.StoreTimeout > 0 {
		opts = append(opts, WithTimeout(c.StoreTimeout))
	}
	return opts
}
