package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server     ServerConfig
	Upstream   UpstreamConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	RightNow   RightNowConfig
	Cloudinary CloudinaryConfig
	Composer   ComposerConfig
}

type ServerConfig struct {
	Port         string        `env:"HOTMESS_PORT" envDefault:"8099"`
	Env          string        `env:"HOTMESS_ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"HOTMESS_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HOTMESS_WRITE_TIMEOUT" envDefault:"30s"`
}

// UpstreamConfig configures the reference right-now service (cmd/upstream).
type UpstreamConfig struct {
	Port    string        `env:"HOTMESS_UPSTREAM_PORT" envDefault:"8100"`
	PostTTL time.Duration `env:"HOTMESS_POST_TTL" envDefault:"1h"`
}

type DatabaseConfig struct {
	DSN             string        `env:"HOTMESS_DATABASE_DSN" envDefault:"hotmess:hotmess@tcp(localhost:3306)/hotmess?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `env:"HOTMESS_DATABASE_MAX_IDLE" envDefault:"10"`
	MaxOpenConns    int           `env:"HOTMESS_DATABASE_MAX_OPEN" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"HOTMESS_DATABASE_CONN_LIFETIME" envDefault:"1h"`
}

// JWTConfig verifies access tokens issued by the account service.
type JWTConfig struct {
	AccessSecret string        `env:"HOTMESS_JWT_ACCESS_SECRET" envDefault:"change-me-in-production"`
	AccessExpiry time.Duration `env:"HOTMESS_JWT_ACCESS_EXPIRY" envDefault:"15m"`
	Issuer       string        `env:"HOTMESS_JWT_ISSUER" envDefault:"hotmess"`
}

// RightNowConfig points at the service hosting the draft-assist and create endpoints.
type RightNowConfig struct {
	APIBase string        `env:"HOTMESS_RIGHT_NOW_API_BASE" envDefault:"http://localhost:8100"`
	Timeout time.Duration `env:"HOTMESS_RIGHT_NOW_TIMEOUT" envDefault:"20s"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER" envDefault:"HotMess/right-now"`
}

type ComposerConfig struct {
	SessionIdleTimeout time.Duration `env:"HOTMESS_SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	DefaultBoundaries  string        `env:"HOTMESS_DEFAULT_BOUNDARIES"`
	AssistPerMinute    int           `env:"HOTMESS_ASSIST_PER_MINUTE" envDefault:"6"`
	// TierSwitching enables the demo tier switch outside production.
	TierSwitching bool `env:"HOTMESS_TIER_SWITCHING" envDefault:"true"`
}

// Load reads configuration from the environment, falling back to development defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Server.Env == "production" {
		cfg.Composer.TierSwitching = false
	}
	return &cfg, nil
}

// MediaEnabled reports whether Cloudinary credentials are present.
func (c CloudinaryConfig) MediaEnabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}
