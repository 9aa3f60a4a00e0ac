// Package config loads the web client configuration from an optional .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the web client configuration
type Config struct {
	APIURL       string        `mapstructure:"GAMERHUB_API_URL"`
	Host         string        `mapstructure:"HOST"`
	Port         int           `mapstructure:"PORT"`
	StorageType  string        `mapstructure:"STORAGE_TYPE"`
	RedisURL     string        `mapstructure:"REDIS_URL"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`
	// IdleTimeout is how long an unused browser workspace stays in memory
	IdleTimeout time.Duration `mapstructure:"WORKSPACE_IDLE_TIMEOUT"`
}

var keys = []string{
	"GAMERHUB_API_URL", "HOST", "PORT", "STORAGE_TYPE", "REDIS_URL",
	"LOG_LEVEL", "COOKIE_SECURE", "SESSION_TTL", "WORKSPACE_IDLE_TIMEOUT",
}

// Load reads configuration from a .env file in dir, when present, and the
// environment. Environment variables win over the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	setDefaults(v)
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GAMERHUB_API_URL", "http://localhost:5000/api")
	v.SetDefault("HOST", "")
	v.SetDefault("PORT", 8080)
	v.SetDefault("STORAGE_TYPE", "memory")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("WORKSPACE_IDLE_TIMEOUT", "30m")
}

func (c *Config) validate() error {
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if c.APIURL == "" {
		return errors.New("GAMERHUB_API_URL is required")
	}
	return nil
}

// Level parses LOG_LEVEL, falling back to info
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
