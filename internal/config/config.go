// Package config loads process-wide configuration from the environment.
//
// A .env file in the working directory is loaded first (convenient for
// development), then real environment variables override it. Everything is
// read once at startup and treated as immutable afterwards — there is no
// runtime reloading, and in particular the cookie-signing secret is never
// rotated while the process runs.
package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs.
type Config struct {
	Port        int
	DBPath      string
	TemplateDir string
	StaticDir   string
	// SecretKey signs the session cookie. Required: a guessable or empty
	// key would let anyone forge a session for any user id.
	SecretKey string
	LogLevel  slog.Level
}

// Load reads the configuration, applying defaults for everything except the
// secret key.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not an error — production sets real env vars instead.
		log.Println("no .env file found, using environment variables")
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("config: SECRET_KEY must be set (try: openssl rand -hex 32)")
	}

	return &Config{
		Port:        getEnvAsInt("PORT", 8080),
		DBPath:      getEnv("DB_PATH", "data/blog.db"),
		TemplateDir: getEnv("TEMPLATE_DIR", "web/templates"),
		StaticDir:   getEnv("STATIC_DIR", "web/static"),
		SecretKey:   secret,
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseLogLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
