// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required variables abort
// startup when missing; optional ones fall back to defaults that
// match the development setup.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret     string        // shared secret signing both token kinds
	EventTokenTTL time.Duration // event token lifetime (default 7 days)
	BcryptCost    int           // bcrypt cost for password hashing

	BGGBaseURL      string        // BoardGameGeek XML API2 base URL
	ImageDir        string        // directory for cached thumbnails
	ImageRetryAfter time.Duration // no-thumbnail marker lifetime
}

// Load reads configuration from the environment.  Required variables
// are enforced by must(); missing values cause the program to exit
// with a fatal log message.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:     must("JWT_SECRET"),
		EventTokenTTL: time.Duration(atoi(getenv("EVENT_TOKEN_TTL_DAYS", "7"))) * 24 * time.Hour,
		BcryptCost:    atoi(getenv("BCRYPT_COST", "12")),

		BGGBaseURL:      getenv("BGG_BASE_URL", "https://boardgamegeek.com/xmlapi2"),
		ImageDir:        getenv("IMAGE_DIR", "data/images"),
		ImageRetryAfter: parseDur(getenv("IMAGE_RETRY_AFTER", "15m")),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
