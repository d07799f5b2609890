// Package config loads client configuration from the environment. A .env
// file in the working directory is honored when present; every value has
// a default so the client runs against a local backend with no setup.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL  = "http://localhost:4000/api"
	defaultRedisAddr   = "localhost:6379"
	defaultHTTPTimeout = 12 * time.Second
)

type Config struct {
	APIBaseURL    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	HTTPTimeout   time.Duration
}

// Load reads the environment, optionally seeded from .env. A missing .env
// is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL:    getenv("CINECLIC_API_URL", defaultAPIBaseURL),
		RedisAddr:     getenv("CINECLIC_REDIS_ADDR", defaultRedisAddr),
		RedisPassword: os.Getenv("CINECLIC_REDIS_PASSWORD"),
		RedisDB:       getenvInt("CINECLIC_REDIS_DB", 0),
		HTTPTimeout:   getenvDuration("CINECLIC_HTTP_TIMEOUT", defaultHTTPTimeout),
	}
}

func getenv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
