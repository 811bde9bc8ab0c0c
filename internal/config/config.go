// Package config loads the walletvault TOML configuration: which backend
// variant holds the store, where it lives, and how logging behaves.
package config

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mighty840/walletvault/internal/storage"
)

const (
	defaultStoragePath  = "walletvault.db"
	defaultLogLevel     = "info"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: string(storage.DefaultBackend),
			Path:    defaultStoragePath,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			File:      "",
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error; an
// unparseable or invalid one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		default:
			var raw rawConfig
			if err := toml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
			}
			raw.apply(&cfg)
		}
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// raw mirrors Config with pointer fields so an absent key keeps its default
// instead of zeroing it.
type rawConfig struct {
	Storage *rawStorage `toml:"storage"`
	Logging *rawLogging `toml:"logging"`
}

type rawStorage struct {
	Backend *string `toml:"backend"`
	Path    *string `toml:"path"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

func (r rawConfig) apply(cfg *Config) {
	if r.Storage != nil {
		if r.Storage.Backend != nil {
			cfg.Storage.Backend = *r.Storage.Backend
		}
		if r.Storage.Path != nil {
			cfg.Storage.Path = *r.Storage.Path
		}
	}
	if r.Logging != nil {
		if r.Logging.Level != nil {
			cfg.Logging.Level = *r.Logging.Level
		}
		if r.Logging.File != nil {
			cfg.Logging.File = *r.Logging.File
		}
		if r.Logging.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *r.Logging.MaxSizeMB
		}
		if r.Logging.MaxFiles != nil {
			cfg.Logging.MaxFiles = *r.Logging.MaxFiles
		}
	}
}

func validate(cfg Config) error {
	switch storage.Backend(cfg.Storage.Backend) {
	case storage.BackendBolt, storage.BackendBadger, storage.BackendMemory, storage.BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, cfg.Storage.Backend)
	}

	if cfg.Storage.Backend != string(storage.BackendMemory) && cfg.Storage.Path == "" {
		return fmt.Errorf("%w: storage path is required for backend %q", ErrInvalidConfig, cfg.Storage.Backend)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, cfg.Logging.Level)
	}

	return nil
}
