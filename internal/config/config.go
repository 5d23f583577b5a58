package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	ServiceName    string
	Env            string
	ReaperInterval time.Duration
	OrderTTL       time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// local-dev convenience. Missing values fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		ServiceName:    getenv("SERVICE_NAME", "minishop-orders"),
		Env:            getenv("ENV", "dev"),
		ReaperInterval: getduration("REAPER_INTERVAL", 5*time.Minute),
		OrderTTL:       getduration("ORDER_TTL", 10*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
