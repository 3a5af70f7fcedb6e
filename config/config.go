// Package config loads application settings from config.yml, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	BaseURL           string `mapstructure:"BASE_URL"`
	SqliteDB          string `mapstructure:"SQLITE_DB"`
	SessionSecret     string `mapstructure:"SESSION_SECRET"`
	SessionMaxAge     int    `mapstructure:"SESSION_MAX_AGE"`
	SecureCookies     bool   `mapstructure:"SECURE_COOKIES"`
	MediaRoot         string `mapstructure:"MEDIA_ROOT"`
	MaxUploadMB       int    `mapstructure:"MAX_UPLOAD_MB"`
	GinMode           string `mapstructure:"GIN_MODE"`
	AuthRatePerMinute int    `mapstructure:"AUTH_RATE_PER_MINUTE"`

	// TrustedProxies lists the proxies whose X-Forwarded-For is believed.
	// Empty means the peer address is the client address.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPath       string `mapstructure:"LOG_PATH"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `mapstructure:"LOG_COMPRESS"`
}

var ErrMissingSecret = errors.New("SESSION_SECRET environment variable not set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("SQLITE_DB", "generalstuff.db")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_MAX_AGE", 86400*7)
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MAX_UPLOAD_MB", 8)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("AUTH_RATE_PER_MINUTE", 20)
	v.SetDefault("TRUSTED_PROXIES", []string{})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 7)
	v.SetDefault("LOG_COMPRESS", false)
}

// LoadConfig reads config.yml (optional), then .env (optional), then the
// environment. Later sources win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.SessionSecret == "" {
		return nil, ErrMissingSecret
	}

	return &cfg, nil
}

// MaxUploadBytes is the per-request multipart memory limit.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 8 << 20
	}
	return int64(c.MaxUploadMB) << 20
}
