// Package config loads server settings from an optional TOML file with
// environment overrides for the values that differ per deployment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	AI       AIConfig       `toml:"ai"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type AIConfig struct {
	ServiceURL         string `toml:"service_url"`
	RankTimeoutSeconds int    `toml:"rank_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		AI: AIConfig{
			RankTimeoutSeconds: 10,
		},
	}
}

// Load reads the TOML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("AI_SERVICE_URL"); v != "" {
		cfg.AI.ServiceURL = v
	}
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is required (database.url or DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required (auth.jwt_secret or JWT_SECRET)")
	}
	return nil
}

// RankTimeout returns the provider timeout as a duration.
func (c AIConfig) RankTimeout() time.Duration {
	if c.RankTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RankTimeoutSeconds) * time.Second
}
