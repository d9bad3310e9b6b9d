package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned when no session signing secret is configured
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV   string
	PORT     int
	BASE_URL string
	// Database
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	DB_DRIVER    string
	// Session
	JWT_SECRET        string
	JWT_ISSUER        string
	SESSION_TTL_HOURS int
	// Uploads & listing
	UPLOAD_ROOT   string
	MAX_UPLOAD_MB int
	PAGE_SIZE     int
	// Redis
	REDIS_URL string
	// HTTP hardening
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	// Logging
	ACTIVITY_LOG_PATH string
	// Cron
	CRON_ENABLED              bool
	ORPHAN_FILE_GRACE_MINUTES int
	// S3 compatible mirror (DigitalOcean Spaces)
	DO_SPACES_ACCESS_KEY string
	DO_SPACES_SECRET_KEY string
	DO_SPACES_BUCKET     string
	DO_SPACES_REGION     string
	DO_SPACES_ENDPOINT   string
	// Seeder
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	ADMIN_NAME     string
}

func Get() (*EnviornmentVariable, error) {
	envVariables := &EnviornmentVariable{
		GO_ENV:   os.Getenv("GO_ENV"),
		PORT:     getInt("PORT", 8080),
		BASE_URL: strings.TrimRight(getString("BASE_URL", "http://localhost:8080"), "/"),
		// Database
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      getString("DB_NAME", "edusphere"),
		DB_HOST:      getString("DB_HOST", "localhost"),
		DB_PORT:      getString("DB_PORT", "5432"),
		DB_SSL_MODE:  getString("DB_SSL_MODE", "disable"),
		DB_DRIVER:    getString("DB_DRIVER", "pgx"),
		// Session
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		JWT_ISSUER:        getString("JWT_ISSUER", "edusphere"),
		SESSION_TTL_HOURS: getInt("SESSION_TTL_HOURS", 24),
		// Uploads & listing
		UPLOAD_ROOT:   getString("UPLOAD_ROOT", "uploads"),
		MAX_UPLOAD_MB: getInt("MAX_UPLOAD_MB", 10),
		PAGE_SIZE:     getInt("PAGE_SIZE", 10),
		// Redis
		REDIS_URL: getString("REDIS_URL", "redis://localhost:6379/0"),
		// HTTP hardening
		ALLOWED_ORIGINS:     getString("ALLOWED_ORIGINS", "http://localhost:8080"),
		RATE_LIMIT_REQUESTS: getInt("RATE_LIMIT_REQUESTS", 100),
		// Logging
		ACTIVITY_LOG_PATH: getString("ACTIVITY_LOG_PATH", "logs/activity.log"),
		// Cron
		CRON_ENABLED:              os.Getenv("CRON_ENABLED") != "false", // Default to enabled
		ORPHAN_FILE_GRACE_MINUTES: getInt("ORPHAN_FILE_GRACE_MINUTES", 60),
		// Spaces
		DO_SPACES_ACCESS_KEY: os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY: os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:     os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:     os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:   os.Getenv("DO_SPACES_ENDPOINT"),
		// Seeder
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		ADMIN_NAME:     getString("ADMIN_NAME", "Administrator"),
	}

	if envVariables.JWT_SECRET == "" {
		return envVariables, ErrMissingJWTSecret
	}

	return envVariables, nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// SecureCookies reports whether cookies must carry the Secure flag
func (e *EnviornmentVariable) SecureCookies() bool {
	return strings.HasPrefix(e.BASE_URL, "https://")
}

// SpacesEnabled reports whether the object storage mirror is configured
func (e *EnviornmentVariable) SpacesEnabled() bool {
	return e.DO_SPACES_BUCKET != "" && e.DO_SPACES_ACCESS_KEY != "" && e.DO_SPACES_SECRET_KEY != ""
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
