package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Fallback signing secrets mirror the development defaults of the
// deployment this service replaces. They must never reach production;
// cmd/api logs a loud warning whenever one of them is in effect.
const (
	FallbackAccessSecret  = "fallback-secret"
	FallbackRefreshSecret = "fallback-refresh-secret"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	LogLevel       string
	AllowedOrigins []string

	// Redis is optional: when RedisAddr is empty the revocation
	// registry runs in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDR",
		"JWT_SECRET", "JWT_REFRESH_SECRET",
		"JWT_ACCESS_TTL", "JWT_REFRESH_TTL",
		"LOG_LEVEL", "ALLOWED_ORIGINS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDR", ":4001")
	v.SetDefault("JWT_SECRET", FallbackAccessSecret)
	v.SetDefault("JWT_REFRESH_SECRET", FallbackRefreshSecret)
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("ALLOWED_ORIGINS", "*")

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	accessTTL := v.GetDuration("JWT_ACCESS_TTL")
	if accessTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}
	refreshTTL := v.GetDuration("JWT_REFRESH_TTL")
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("JWT_REFRESH_TTL must be a positive duration")
	}

	return &Config{
		DatabaseURL:      dbURL,
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		JWTAccessSecret:  v.GetString("JWT_SECRET"),
		JWTRefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
		LogLevel:         v.GetString("LOG_LEVEL"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
	}, nil
}

// UsingFallbackSecrets reports whether either signing secret is still
// the development default.
func (c *Config) UsingFallbackSecrets() bool {
	return c.JWTAccessSecret == FallbackAccessSecret ||
		c.JWTRefreshSecret == FallbackRefreshSecret
}
