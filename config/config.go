package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/util"
)

type Config struct {
	Env      string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string
	Addr           string
	CacheURL       string
	MQURL          string

	JWTSecret string
	TokenTTL  time.Duration

	// Timezone is the cinema's local zone, used for business hours and date checks.
	Timezone *time.Location

	LoginMaxAttempts int
	LoginWindow      time.Duration

	AdminEmail    string
	AdminPassword string
}

var (
	ErrMissingDSN       = errors.New("DATABASE_DSN is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
)

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(getenv("CINEMA_TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:              getenv("APP_ENV", "development"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		DatabaseDriver:   getenv("DATABASE_DRIVER", "postgres"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		Addr:             getenv("ADDR", ":4000"),
		CacheURL:         os.Getenv("CACHE_URL"),
		MQURL:            os.Getenv("RABBIT_MQ_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         getDuration("TOKEN_TTL", time.Hour),
		Timezone:         location,
		LoginMaxAttempts: getInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getDuration("LOGIN_WINDOW", 15*time.Minute),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, ErrMissingDSN
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
