// Package config loads host settings from an optional .env file and
// GAMESCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	vmcontext "github.com/govm-net/gamescore/context"
	"github.com/govm-net/gamescore/vm"
)

// Config holds the host settings
type Config struct {
	ContextType   string `env:"CONTEXT_TYPE" envDefault:"db"`
	DBPath        string `env:"DB_PATH" envDefault:"gamescore.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"gamescore"`
	RepositoryDir string `env:"REPOSITORY_DIR" envDefault:"contracts"`
	GasLimit      int64  `env:"GAS_LIMIT" envDefault:"0"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads envFile when it exists, then parses the environment.
// Variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "GAMESCORE_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GasLimit < 0 {
		return nil, fmt.Errorf("invalid gas limit: %d", cfg.GasLimit)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ContextParams returns the parameters of the selected context backend
func (c *Config) ContextParams() map[string]any {
	switch vmcontext.ContextType(c.ContextType) {
	case vmcontext.DBContextType:
		return map[string]any{"db_path": c.DBPath}
	case vmcontext.RedisContextType:
		return map[string]any{
			"addr":     c.RedisAddr,
			"password": c.RedisPassword,
			"db":       c.RedisDB,
			"prefix":   c.RedisPrefix,
		}
	default:
		return map[string]any{}
	}
}

// EngineConfig builds the vm configuration
func (c *Config) EngineConfig(logger *slog.Logger) *vm.Config {
	return &vm.Config{
		ContextType:   c.ContextType,
		ContextParams: c.ContextParams(),
		RepositoryDir: c.RepositoryDir,
		GasLimit:      c.GasLimit,
		Logger:        logger,
	}
}
