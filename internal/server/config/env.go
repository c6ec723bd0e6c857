package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, optionally
// loading a .env file first. Unset or malformed variables leave the current
// value untouched.
//
// Recognized variables:
//
//	ADDRESS              HTTP bind address (e.g. ":8080")
//	DATABASE_DRIVER      "postgres" or "sqlite"
//	DATABASE_DSN         PostgreSQL DSN or SQLite file path
//	JWT_SECRET           HMAC signing secret
//	TOKEN_VALIDITY       token lifetime as a Go duration string ("168h")
//	BCRYPT_COST          password hashing cost factor
//	MIN_PASSWORD_LENGTH  registration password policy
func parseEnv(config *Config) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		config.DatabaseDriver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = n
		}
	}
	if v := os.Getenv("MIN_PASSWORD_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.MinPasswordLength = n
		}
	}
}
