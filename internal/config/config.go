// Package config loads deckbox configuration: built-in defaults,
// overridden by a YAML file, overridden by DECKBOX_* environment
// variables, overridden by command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "DECKBOX_"

// Source describes where the deck CSV is fetched from.
type Source struct {
	Type     string `koanf:"type" validate:"required,oneof=file http git"`
	Location string `koanf:"location" validate:"required"`
	CSVPath  string `koanf:"csv_path"`
	CacheDir string `koanf:"cache_dir"`
}

// Config is the full runtime configuration. Ladder is optional; when
// empty the built-in review intervals apply.
type Config struct {
	DBPath  string          `koanf:"db_path" validate:"required"`
	Profile string          `koanf:"profile" validate:"required"`
	Listen  string          `koanf:"listen" validate:"required,hostname_port"`
	Ladder  []time.Duration `koanf:"ladder" validate:"omitempty,dive,gt=0"`
	Source  Source          `koanf:"source"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:  "deckbox.db",
		Profile: "default",
		Listen:  "127.0.0.1:8080",
		Source: Source{
			Type:     "file",
			Location: "deck.csv",
			CacheDir: "repos",
		},
	}
}

// Load layers the configuration sources and validates the result. The
// file is optional: a path that does not exist is skipped.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// Double underscore nests: DECKBOX_SOURCE__LOCATION -> source.location.
	// Single underscores stay, so DECKBOX_DB_PATH -> db_path.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
