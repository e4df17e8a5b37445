// Package config loads process configuration from the environment once at
// startup. A .env file in the working directory is honoured when present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	// OAuth application credentials.
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	RedirectURI  string `env:"REDIRECT_URI,required"`
	Scope        string `env:"SCOPE,default=user-read-private"`

	// OAuthCachePath is the JSON file holding the last token set.
	OAuthCachePath string `env:"OAUTH_CACHE_PATH,default=.cache-spotify"`

	HTTPAddr     string `env:"HTTP_ADDR,default=:8501"`
	DatabasePath string `env:"DATABASE_PATH,default=popularity.db"`

	SpotifyAPIURL        string  `env:"SPOTIFY_API_URL,default=https://api.spotify.com/v1"`
	MaxRetries           int     `env:"SPOTIFY_MAX_RETRIES,default=3"`
	RetryBackoffMs       int     `env:"SPOTIFY_RETRY_BACKOFF_MS,default=1000"`
	ArtistMatchThreshold float64 `env:"ARTIST_MATCH_THRESHOLD,default=0"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads the optional .env file and then decodes the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv decodes the process environment into a Config. Any missing or
// malformed value is reported as a *domain.ConfigurationError.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, &domain.ConfigurationError{Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, &domain.ConfigurationError{Err: err}
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return errors.New("CLIENT_ID and CLIENT_SECRET must not be blank")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return errors.New("REDIRECT_URI must not be blank")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("SPOTIFY_MAX_RETRIES must be >= 0, got %d", c.MaxRetries)
	}
	if c.RetryBackoffMs <= 0 {
		return fmt.Errorf("SPOTIFY_RETRY_BACKOFF_MS must be > 0, got %d", c.RetryBackoffMs)
	}
	if c.ArtistMatchThreshold < 0 || c.ArtistMatchThreshold > 1 {
		return fmt.Errorf("ARTIST_MATCH_THRESHOLD must be within [0,1], got %v", c.ArtistMatchThreshold)
	}
	return nil
}

// Credentials returns the immutable OAuth credential set.
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		Scope:        c.Scope,
	}
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// NewLogger builds a zap logger for LogLevel. "debug" selects the
// development encoder.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, &domain.ConfigurationError{Err: fmt.Errorf("LOG_LEVEL: %w", err)}
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
