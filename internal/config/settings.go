package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read into the settings,
// e.g. RULEMINE_MINING_MIN_SUPPORT.
const EnvPrefix = "RULEMINE"

// Defaults. The minimum support of 100 transactions matches the threshold
// used for the browsing logs this tool was first written for.
const (
	DefaultMinSupport = 100
	DefaultMaxLevel   = 3
	DefaultWorkers    = 1
)

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Mining   MiningSettings   `mapstructure:"mining"`
	Logging  LoggingSettings  `mapstructure:"logging"`
	Database DatabaseSettings `mapstructure:"database"`
}

// MiningSettings controls the Apriori search.
type MiningSettings struct {
	MinSupport int `mapstructure:"min_support"`
	MaxLevel   int `mapstructure:"max_level"`
	Workers    int `mapstructure:"workers"`
}

// LoggingSettings selects the slog handler.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseSettings locates the run history database.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers default values and environment lookup on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mining.min_support", DefaultMinSupport)
	v.SetDefault("mining.max_level", DefaultMaxLevel)
	v.SetDefault("mining.workers", DefaultWorkers)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile points v at cfgFile, or at config.yaml in Dir() and the working
// directory when cfgFile is empty. A missing default config file is not an
// error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Mining.MinSupport < 1 {
		return fmt.Errorf("%w: mining.min_support must be at least 1, got %d", ErrInvalidConfig, s.Mining.MinSupport)
	}
	if s.Mining.MaxLevel < 1 {
		return fmt.Errorf("%w: mining.max_level must be at least 1, got %d", ErrInvalidConfig, s.Mining.MaxLevel)
	}
	if s.Mining.Workers < 1 {
		return fmt.Errorf("%w: mining.workers must be at least 1, got %d", ErrInvalidConfig, s.Mining.Workers)
	}
	if _, err := s.Logging.SlogLevel(); err != nil {
		return err
	}
	switch s.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format: %s", ErrInvalidConfig, s.Logging.Format)
	}
	return nil
}

// SlogLevel parses the configured log level.
func (l LoggingSettings) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfig, l.Level)
}

// DefaultDBPath returns ~/.rulemine/rulemine.db.
func DefaultDBPath(home string) string {
	return filepath.Join(home, ".rulemine", "rulemine.db")
}
