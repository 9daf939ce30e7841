package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	DataDir          string        `mapstructure:"DATA_DIR"`
	StaticDir        string        `mapstructure:"STATIC_DIR"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	RateLimitIdleTTL time.Duration `mapstructure:"RATE_LIMIT_IDLE_TTL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	StrictReferences bool          `mapstructure:"STRICT_REFERENCES"`

	SnapshotBucket    string `mapstructure:"SNAPSHOT_BUCKET"`
	SnapshotRegion    string `mapstructure:"SNAPSHOT_REGION"`
	SnapshotEndpoint  string `mapstructure:"SNAPSHOT_ENDPOINT"`
	SnapshotPrefix    string `mapstructure:"SNAPSHOT_PREFIX"`
	SnapshotPathStyle bool   `mapstructure:"SNAPSHOT_PATH_STYLE"`
}

var keys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"DATA_DIR",
	"STATIC_DIR",
	"CORS_ORIGINS",
	"BODY_LIMIT",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"RATE_LIMIT_IDLE_TTL",
	"REQUEST_TIMEOUT",
	"STRICT_REFERENCES",
	"SNAPSHOT_BUCKET",
	"SNAPSHOT_REGION",
	"SNAPSHOT_ENDPOINT",
	"SNAPSHOT_PREFIX",
	"SNAPSHOT_PATH_STYLE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("RATE_LIMIT_IDLE_TTL", "3m")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("STRICT_REFERENCES", false)
	v.SetDefault("SNAPSHOT_REGION", "us-east-1")
	v.SetDefault("SNAPSHOT_PREFIX", "journal")
	v.SetDefault("SNAPSHOT_PATH_STYLE", false)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SnapshotEnabled reports whether a snapshot bucket is configured.
func (c *Config) SnapshotEnabled() bool {
	return c.SnapshotBucket != ""
}

// Validate checks that the configuration is usable before anything touches
// the data directory.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("ENV must be \"development\", \"test\", or \"production\", got %q", c.Env)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.RateLimitIdleTTL <= 0 {
		return fmt.Errorf("RATE_LIMIT_IDLE_TTL must be positive, got %s", c.RateLimitIdleTTL)
	}
	if c.IsProduction() {
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
			}
		}
	}
	return nil
}
