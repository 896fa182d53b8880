package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const DefaultStoreTimezone = "Europe/London"

func LoadEnv() error {
	// A missing .env is fine; in production the variables are set directly.
	_ = godotenv.Load()
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv(logger *zap.Logger) error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("GEOCODER_URL") == "" {
		logger.Warn("GEOCODER_URL not set - distance based delivery quotes will fail")
	}
	if os.Getenv("ROUTER_URL") == "" {
		logger.Warn("ROUTER_URL not set - straight line distances will be used")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		logger.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_URL") == "" {
		logger.Warn("ADMIN_URL not set")
	}
	if GetEnv("CONFIG_SOURCE", "database") == "file" && os.Getenv("STORE_CONFIG_FILE") == "" {
		return fmt.Errorf("STORE_CONFIG_FILE must be set when CONFIG_SOURCE=file")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue when key is unset or not a number.
func GetEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration reads values such as "5s" or "2h".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// StoreLocation is the time zone opening hours are written in.
func StoreLocation() (*time.Location, error) {
	name := GetEnv("STORE_TIMEZONE", DefaultStoreTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}
