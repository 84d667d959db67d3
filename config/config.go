package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"equipment_lending_client/rules"
)

type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Lending API.
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`

	WebOrigin string `mapstructure:"WEB_ORIGIN"`

	// Redis holds gateway sessions and the read-notification cache.
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	ReadSyncInterval time.Duration `mapstructure:"READ_SYNC_INTERVAL"`

	// Optional; the audit log is off without it.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	Timezone             string        `mapstructure:"TIMEZONE"`
	NotificationIdentity string        `mapstructure:"NOTIFICATION_IDENTITY"`
	RateLimitPerMin      int           `mapstructure:"RATE_LIMIT_PER_MIN"`
	AlertTimeout         time.Duration `mapstructure:"ALERT_TIMEOUT"`
}

// LoadEnv reads .env into the process environment. A missing file is fine.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3001")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", 15*time.Second)
	v.SetDefault("WEB_ORIGIN", "http://localhost:5173")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("READ_SYNC_INTERVAL", 5*time.Minute)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("NOTIFICATION_IDENTITY", "typed")
	v.SetDefault("RATE_LIMIT_PER_MIN", 200)
	v.SetDefault("ALERT_TIMEOUT", 5*time.Second)
}

// Load builds the configuration from the environment on top of defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Identity(); err != nil {
		return err
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

// Location is where plain dates from the lending API are anchored.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c Config) Identity() (rules.IdentityMode, error) {
	return rules.ParseIdentityMode(c.NotificationIdentity)
}

func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }
