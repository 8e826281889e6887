package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/duelhall/duel-server-go/internal/chat"
)

// EnvPrefix prefixes every environment override, e.g. DUEL_LOGGING_LEVEL.
const EnvPrefix = "DUEL"

// Config holds all runtime settings.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Sessions SessionsConfig `mapstructure:"sessions"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File, when set, also writes logs to a size-rotated file.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ChatConfig controls message logs.
type ChatConfig struct {
	MaxMessages uint32 `mapstructure:"max_messages"`
}

// SessionsConfig controls session hosting.
type SessionsConfig struct {
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("chat.max_messages", chat.DefaultMaxMessages)

	v.SetDefault("sessions.idle_ttl", 2*time.Hour)
	v.SetDefault("sessions.cleanup_interval", 10*time.Minute)
}

// Load reads configuration from path (YAML) with environment overrides.
// An empty path, or a path that does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings are usable.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported format %q", c.Logging.Format)
	}
	if err := chat.ValidateMaxMessages(c.Chat.MaxMessages); err != nil {
		return fmt.Errorf("chat.max_messages: %w", err)
	}
	if c.Sessions.IdleTTL <= 0 {
		return fmt.Errorf("sessions.idle_ttl must be positive, got %s", c.Sessions.IdleTTL)
	}
	if c.Sessions.CleanupInterval <= 0 {
		return fmt.Errorf("sessions.cleanup_interval must be positive, got %s", c.Sessions.CleanupInterval)
	}
	return nil
}
