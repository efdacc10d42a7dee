package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// values read once at startup by Load
var (
	IS_PROD       = false
	NoAuthBypass  = false
	AuthToken     = ""
	AdminUser     = ""
	AdminPassword = ""
	RedisPassword = ""
)

// Load reads a .env file when present and refreshes the process level settings.
func Load(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	IS_PROD = strings.EqualFold(Env("APP_ENV", "development"), "production")
	NoAuthBypass = !IS_PROD && EnvBool("AUTH_BYPASS", false)
	AuthToken = Env("ADMIN_TOKEN", "")
	AdminUser = Env("ADMIN_USER", "")
	AdminPassword = Env("ADMIN_PASSWORD", "")
	RedisPassword = Env("REDIS_PASSWORD", "")
	return nil
}

func Env(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func EnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(Env(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func EnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(Env(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func EnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Env(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func LogLevel() slog.Level {
	switch strings.ToLower(Env("LOG_LEVEL", "")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	}
	if IS_PROD {
		return LOG_LEVEL_PROD
	}
	return slog.LevelDebug
}
